// Package beansbinding provides property binding and synchronization
// machinery.
//
// The core engine is in package 'binding', endpoint contracts and
// implementations are in 'observe', and some command-line tools are
// in `cmd`.
//
// See https://github.com/dave-mccloskey/beansbinding/blob/master/README.md for more.
package beansbinding

/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package observe defines the endpoint contract for property
// binding: an Observable exposes named properties, accepts writes,
// and notifies subscribed Listeners when a property changes.
//
// The binding engine (package binding) consumes only the interfaces
// here.  This package also ships ready-made implementations: Object
// (a dynamic property map), List (an observable ordered collection),
// and Struct (a reflection adapter over an ordinary Go struct).
//
// Unless an implementation says otherwise, Observables are not safe
// for concurrent use.  All reads, writes, and the notifications they
// trigger happen synchronously on the calling goroutine.
package observe

import (
	"reflect"
)

// A Listener receives property-change notifications from an
// Observable it subscribed to.
//
// Unsubscribe finds the subscription by comparing Listeners with ==,
// so a Listener implementation must be comparable.  Pointer receivers
// are the easy way; see Hear.
type Listener interface {
	PropertyChanged(source Observable, name string, old, new interface{})
}

// An Observable exposes named properties with change notification.
//
// Get returns the Unreadable sentinel (never an error) when the
// named property cannot currently produce a value, either because no
// such property exists or because the property is write-only.
//
// Subscribe registers a Listener for changes to the named property.
// The empty name subscribes to every property.  Subscribing the same
// Listener twice for the same name is a no-op.  Unsubscribe removes
// a subscription previously made with the same name and Listener.
type Observable interface {
	Get(name string) interface{}
	Set(name string, value interface{}) error
	Subscribe(name string, l Listener)
	Unsubscribe(name string, l Listener)
}

// Typed is an optional Observable capability that reports declared
// property types.
//
// A nil reflect.Type means the property has no declared type.
type Typed interface {
	TypeOf(name string) reflect.Type
}

// Unreadable is the value Get returns when a property exists in name
// only: the Observable cannot currently produce a value for it.
var Unreadable = unreadable{}

type unreadable struct{}

func (unreadable) String() string {
	return "unreadable"
}

// IsUnreadable reports whether x is the Unreadable sentinel.
func IsUnreadable(x interface{}) bool {
	_, is := x.(unreadable)
	return is
}

// TypeOf reports the type of the named property: the declared type
// if o implements Typed and declares one, otherwise the dynamic type
// of the property's current value.  Returns nil when neither is
// available.
func TypeOf(o Observable, name string) reflect.Type {
	if td, ok := o.(Typed); ok {
		if t := td.TypeOf(name); t != nil {
			return t
		}
	}
	v := o.Get(name)
	if v == nil || IsUnreadable(v) {
		return nil
	}
	return reflect.TypeOf(v)
}

// Hear adapts a function to the Listener interface.  The returned
// value is the subscription's identity: keep it if you intend to
// Unsubscribe.
func Hear(f func(source Observable, name string, old, new interface{})) Listener {
	return &funcListener{f}
}

type funcListener struct {
	f func(source Observable, name string, old, new interface{})
}

func (l *funcListener) PropertyChanged(source Observable, name string, old, new interface{}) {
	l.f(source, name, old, new)
}

// sameValue reports whether old and new are the same for the purpose
// of suppressing a notification.  Values of uncomparable dynamic
// types always count as different.
func sameValue(old, new interface{}) bool {
	if old == nil || new == nil {
		return old == nil && new == nil
	}
	to, tn := reflect.TypeOf(old), reflect.TypeOf(new)
	if to != tn || !to.Comparable() {
		return false
	}
	return old == new
}

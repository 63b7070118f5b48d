/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package ecmascript provides an ECMAScript-compatible expression
// evaluator for rich binding sources.
//
// The expression is evaluated with the root Observable's properties
// in scope as plain identifiers, so "first + ' ' + last" works
// against a root with "first" and "last" properties.  Nested
// Observables appear as objects, and Lists appear as arrays.
//
// Reading a property that is currently unreadable (or absent) yields
// undefined and marks the whole evaluation Incomplete, which is how
// a Binding knows to use its incomplete-source substitute instead of
// a real value.
package ecmascript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dave-mccloskey/beansbinding/binding"
	"github.com/dave-mccloskey/beansbinding/observe"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Evaluate if the evaluation is
	// interrupted by its context or by Timeout.
	Interrupted = errors.New(InterruptedMessage)
)

// Evaluator evaluates ECMAScript expressions for Bindings.  It
// implements binding.Evaluator.
//
// An Evaluator is safe for concurrent use, though each evaluation
// runs in its own throwaway runtime.  Programs are compiled once per
// distinct expression and cached.
type Evaluator struct {
	// Timeout, when positive, bounds each evaluation.  The
	// context given to Evaluate can always interrupt, Timeout or
	// not.  A Binding evaluates with context.Background(), so a
	// host that binds foreign expressions should set a Timeout.
	Timeout time.Duration

	sync.Mutex
	programs map[string]*goja.Program
}

// NewEvaluator makes a new Evaluator with no Timeout.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		programs: make(map[string]*goja.Program),
	}
}

// wrapSrc turns an expression into a runnable program.  The with
// block is what puts the root's properties in scope, so the code
// can't be compiled in strict mode.  The newlines protect the
// closing paren from a trailing line comment in src.
func wrapSrc(src string) string {
	return fmt.Sprintf("(function() { with (_root) { return (\n%s\n); } }());\n", src)
}

func (e *Evaluator) compile(src string) (*goja.Program, error) {
	e.Lock()
	defer e.Unlock()
	if p, have := e.programs[src]; have {
		return p, nil
	}

	code := wrapSrc(src)

	p, err := goja.Compile("", code, false)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	if e.programs == nil {
		e.programs = make(map[string]*goja.Program)
	}
	e.programs[src] = p
	return p, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// Evaluate runs expr with root's properties in scope and classifies
// what came out.
//
// An exported []interface{} reports MultiValue; anything else is a
// SingleValue (undefined exports as nil).  If the evaluation read
// any unreadable property, the result is Incomplete no matter what
// value the expression produced.  Referencing an identifier the root
// doesn't have at all is also Incomplete rather than an error, since
// for a Binding those two situations are the same: the source isn't
// all there yet.
//
// Expressions can't write: assigning to a root property does
// nothing.  The environment provides now(), which returns the
// current UTC time in time.RFC3339Nano, and cronNext(expr), which
// parses expr with github.com/gorhill/cronexpr and returns the next
// time in the same format.
func (e *Evaluator) Evaluate(ctx context.Context, expr string, root observe.Observable) (binding.EvalResult, error) {
	p, err := e.compile(expr)
	if err != nil {
		return binding.EvalResult{}, err
	}

	o := goja.New()

	var sawUnreadable bool
	o.Set("_root", o.NewDynamicObject(&jsView{
		o:   root,
		rt:  o,
		saw: &sawUnreadable,
	}))

	o.Set("now", func() interface{} {
		return time.Now().UTC().Format(time.RFC3339Nano)
	})

	// cronNext parses the given string as a crontab expression
	// using github.com/gorhill/cronexpr.  Returns the next time
	// as a string formatted in time.RFC3339Nano (UTC).
	o.Set("cronNext", func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		cronExpr, is := x.(string)
		if !is {
			protest(o, "not a string")
		}

		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	})

	if 0 < e.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If Evaluate calls cancel() after RunProgram returns,
		// then we'll never see this InterruptedMessage, which
		// is actually the behavior we want.  In this case, we
		// weren't actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := RunProgram(o, p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return binding.EvalResult{}, Interrupted
		}
		if isReferenceError(err) {
			return binding.EvalResult{Kind: binding.Incomplete}, nil
		}
		return binding.EvalResult{}, err
	}

	if sawUnreadable {
		return binding.EvalResult{Kind: binding.Incomplete}, nil
	}

	x := unwrap(v.Export())

	switch x.(type) {
	case []interface{}:
		return binding.EvalResult{Value: x, Kind: binding.MultiValue}, nil
	}
	return binding.EvalResult{Value: x, Kind: binding.SingleValue}, nil
}

// isReferenceError reports whether the program died looking up an
// identifier, which for us means the root lacked a property the
// expression wanted.
func isReferenceError(err error) bool {
	ex, is := err.(*goja.Exception)
	return is && strings.HasPrefix(ex.Error(), "ReferenceError")
}

// RunProgram runs p in o, converting a panic into an error.
func RunProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}

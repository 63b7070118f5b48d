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

package binding

import (
	"context"
	"reflect"
	"regexp"
	"strings"

	"github.com/dave-mccloskey/beansbinding/observe"
)

// ResultKind classifies what an expression evaluation produced.
type ResultKind int

//go:generate stringer -type=ResultKind

const (
	SingleValue ResultKind = iota // One value.
	MultiValue                    // A []interface{} of values, one per list element.
	Incomplete                    // The expression crossed an absent value.
)

// An EvalResult is what evaluating a source expression produced.
// Value is meaningless when Kind is Incomplete.
type EvalResult struct {
	Value interface{}
	Kind  ResultKind
}

// An Evaluator evaluates rich source expressions against a root
// Observable.  Implementations live outside this package; see
// evaluators/ecmascript for one, and evaluators/noop for hosts that
// only allow bare paths.
//
// The engine itself never blocks: it calls Evaluate with
// context.Background() and expects prompt answers.  An Evaluator
// that runs foreign code should bound itself, the way
// evaluators/ecmascript does with its interrupt timeout.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, root observe.Observable) (EvalResult, error)
}

// A Condenser reduces a multi-valued source result to one value.
// The elements it sees went through the conversion pipeline already.
type Condenser interface {
	Condense(values []interface{}) interface{}
}

// CondenserFunc adapts a function to the Condenser interface.
type CondenserFunc func(values []interface{}) interface{}

func (f CondenserFunc) Condense(values []interface{}) interface{} {
	return f(values)
}

var pathExpr = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// IsPath reports whether expr is a bare dotted property path, as
// opposed to a rich expression that needs an Evaluator.
func IsPath(expr string) bool {
	return pathExpr.MatchString(strings.TrimSpace(expr))
}

// An ExprResolver evaluates a Binding's source expression.
//
// A bare dotted path is "bindable": the resolver resolves it live,
// with change notification, exactly like a PathResolver (which is
// what it uses).  Anything richer goes to the Evaluator, on demand
// only: no notification, and no writing back.
type ExprResolver struct {
	root observe.Observable
	expr string
	eval Evaluator
	path *PathResolver // non-nil iff the expression is a bare path
}

// NewExprResolver makes an unbound resolver.  onChange, which may be
// nil, is only ever called for bindable expressions.  An Evaluator
// is required only when the expression is not a bare path.
func NewExprResolver(root observe.Observable, expr string, eval Evaluator, onChange func()) (*ExprResolver, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &BadPath{Path: expr}
	}
	r := &ExprResolver{
		root: root,
		expr: expr,
		eval: eval,
	}
	if IsPath(expr) {
		p, err := NewPathResolver(root, expr, onChange)
		if err != nil {
			return nil, err
		}
		r.path = p
		return r, nil
	}
	if eval == nil {
		return nil, NoEvaluator
	}
	return r, nil
}

// Bindable reports whether the expression supports live change
// notification.
func (r *ExprResolver) Bindable() bool {
	return r.path != nil
}

// Writable reports whether SetValue can work right now.  A rich
// expression never can; a bindable path can unless it currently fans
// out over list elements.
func (r *ExprResolver) Writable() bool {
	return r.path != nil && !r.path.MultiValued()
}

// Bind installs change subscriptions for a bindable expression, and
// does nothing for a rich one.
func (r *ExprResolver) Bind() {
	if r.path != nil {
		r.path.Bind()
	}
}

func (r *ExprResolver) Unbind() {
	if r.path != nil {
		r.path.Unbind()
	}
}

// Evaluate computes the expression's current value.  A hard error
// means the expression itself failed; unreachable paths are not
// errors but EvalResults of Kind Incomplete.
func (r *ExprResolver) Evaluate() (EvalResult, error) {
	if r.path == nil {
		return r.eval.Evaluate(context.Background(), r.expr, r.root)
	}
	if !r.path.HasAllPathValues() {
		return EvalResult{Kind: Incomplete}, nil
	}
	v := r.path.ValueOfLastProperty()
	if r.path.MultiValued() {
		return EvalResult{Value: v, Kind: MultiValue}, nil
	}
	return EvalResult{Value: v, Kind: SingleValue}, nil
}

// SetValue writes through a bindable, single-valued expression.
func (r *ExprResolver) SetValue(v interface{}) error {
	if !r.Writable() {
		return &NotWritable{Expr: r.expr}
	}
	return r.path.SetValueOfLastProperty(v)
}

// TypeOfLast returns the declared or dynamic type of the final
// property for a bindable, single-valued expression, and nil
// otherwise.
func (r *ExprResolver) TypeOfLast() reflect.Type {
	if r.path == nil {
		return nil
	}
	return r.path.TypeOfLastProperty()
}

// HasAllPathValues reports reachability for a bindable expression.
// A rich expression is always considered reachable; its evaluation
// says otherwise via EvalResult.Kind.
func (r *ExprResolver) HasAllPathValues() bool {
	if r.path == nil {
		return true
	}
	return r.path.HasAllPathValues()
}

func (r *ExprResolver) String() string {
	return r.expr
}

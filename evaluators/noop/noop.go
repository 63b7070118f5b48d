// Package noop provides an Evaluator that refuses every expression,
// for hosts that only allow bare property paths.
//
// A Binding whose source is a dotted path never consults its
// Evaluator, so installing this one turns any richer expression into
// a bind-time or sync-time error instead of running foreign code.
package noop

import (
	"context"
	"errors"
	"log"

	"github.com/dave-mccloskey/beansbinding/binding"
	"github.com/dave-mccloskey/beansbinding/observe"
)

// Unsupported is returned for every evaluation.
var Unsupported = errors.New("expressions not supported")

// Evaluator is a binding.Evaluator that always fails.
type Evaluator struct {
	// Silent, if true, will suppress warning log messages.
	Silent bool
}

// NewEvaluator makes a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) Evaluate(ctx context.Context, expr string, root observe.Observable) (binding.EvalResult, error) {
	if !e.Silent {
		log.Printf("warning: refusing expression %q", expr)
	}
	return binding.EvalResult{}, Unsupported
}

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

package binding

import (
	"github.com/dave-mccloskey/beansbinding/observe"
)

// TargetFactory is the extension point for endpoints that want
// binding-specific behavior, like the element-list management in
// package selector.
//
// When a Binding's target path resolves, the Observable owning the
// final property is probed for this capability: either it implements
// TargetFactory or it does not.  If it does, and CreateBindingTarget
// returns non-nil, the returned BindingTarget rides along with the
// Binding until the endpoint changes or the Binding unbinds.
type TargetFactory interface {
	CreateBindingTarget(property string) BindingTarget
}

// A BindingTarget hears about the Binding it rides along with:
// Bind when the endpoint is acquired, Unbind when it is let go, and
// SourceStateChanged on every source-side ValueState transition.
// This is the only coupling point between the engine and
// endpoint-specific synchronization logic.
type BindingTarget interface {
	Bind(ctl *Controller, property string)
	Unbind(ctl *Controller, property string)
	SourceStateChanged(ctl *Controller, property string)
}

// A Controller is the handle a BindingTarget gets to drive its
// Binding.  It is only valid while that Binding is bound.
type Controller struct {
	b *Binding
}

// Binding returns the Binding being controlled, for reading its
// configuration and parameters.
func (c *Controller) Binding() *Binding {
	return c.b
}

// NewResolver hands out a fresh resolver for expr against root,
// sharing the Binding's evaluation environment.  Extension points
// use this to evaluate per-element detail expressions.
func (c *Controller) NewResolver(root observe.Observable, expr string) (*ExprResolver, error) {
	return NewExprResolver(root, expr, c.b.effectiveEvaluator(), nil)
}

// Evaluator returns the Binding's effective Evaluator, possibly nil,
// so an extension point can give its child bindings the same
// evaluation environment the parent has.
func (c *Controller) Evaluator() Evaluator {
	return c.b.effectiveEvaluator()
}

// ValueEdited reports that the endpoint's value was edited by
// something other than the engine: the target becomes Uncommitted
// and the Context hears TargetEdited.
func (c *Controller) ValueEdited() {
	b := c.b
	if !b.bound {
		return
	}
	oldSS, oldTS := b.sourceState, b.targetState
	b.setTargetState(Uncommitted)
	b.notifyContext(oldSS, oldTS)
	if b.context != nil {
		b.context.targetEdited(b)
	}
}

// UnbindOnCommit flags child for deferred unbind: the first time the
// child's target state becomes Valid, the child unbinds itself and
// leaves its parent.  Transient children over removed list elements
// use this to detach once their last pending write settles.
func (c *Controller) UnbindOnCommit(child *Binding) error {
	if !child.bound {
		return &NotBound{child}
	}
	child.unbindOnCommit = true
	return nil
}

// BindChild binds child with explicit endpoints, independent of the
// child's own declared source and target.  The overrides last until
// the child unbinds.  With keepUncommitted, the child's target state
// is put back to Uncommitted after the initial synchronization, so
// that a pending edit is not considered settled just because the
// child re-bound.
func (c *Controller) BindChild(child *Binding, source, target observe.Observable, targetPath string, keepUncommitted bool) error {
	if child.bound {
		return &AlreadyBound{child}
	}
	child.tmpSource = source
	child.tmpTarget = target
	child.tmpTargetPath = targetPath
	if err := child.Bind(); err != nil {
		child.tmpSource = nil
		child.tmpTarget = nil
		child.tmpTargetPath = ""
		return err
	}
	if keepUncommitted {
		child.setTargetState(Uncommitted)
	}
	return nil
}

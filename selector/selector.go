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

// Package selector synchronizes an element list and a tracked
// selection with a Binding.
//
// A Selector is an Observable with three properties: "elements" (the
// installed element list), "selection" (the detail value of the
// currently selected element), and "len".  Bind a source whose value
// is an observe.List (or a plain []interface{}) to a Selector's
// "elements" and the Selector takes over from there: it follows the
// List's membership, keeps "len" current, and moves "selection"
// around as elements come and go.
//
// The selection is a detail value, not necessarily an element: a
// detail expression given at construction is evaluated against the
// selected element, sharing the owning Binding's evaluation
// environment.  The empty expression means the element itself.
// While an element is selected, a child Binding keeps its detail and
// "selection" in sync both ways, so editing "selection" edits the
// element.
//
// Like the rest of the engine, a Selector is not locked; confine it
// to one goroutine.
package selector

import (
	"reflect"
	"strings"

	"github.com/dave-mccloskey/beansbinding/binding"
	"github.com/dave-mccloskey/beansbinding/observe"
)

// A Selector is the Observable behind a selectable element list.
// Use it as a Binding's target with path "elements".
type Selector struct {
	*observe.Object

	detailExpr string

	ctl      *binding.Controller
	template *binding.Binding
	watch    *listWatch

	list     *observe.List
	elements []interface{}
	selected interface{}
	detail   *binding.Binding
}

// NewSelector makes a Selector whose selection is detail evaluated
// against the selected element.  An empty detail selects the
// elements themselves.
func NewSelector(detail string) *Selector {
	s := &Selector{
		Object:     observe.NewObject(),
		detailExpr: strings.TrimSpace(detail),
	}
	if s.detailExpr != "" {
		s.template = binding.New(nil, s.detailExpr, nil, "")
	}
	s.watch = &listWatch{s: s}
	s.Object.Set("elements", nil)
	s.Object.Set("selection", nil)
	s.Object.Set("len", 0)
	return s
}

// Set implements Observable.  Writing "elements" installs the value
// as the element list; writing "selection" selects the element whose
// detail value equals the written value, when there is one.
func (s *Selector) Set(name string, value interface{}) error {
	if name == "selection" {
		// Move the detail binding before the write lands, so
		// the outgoing element doesn't absorb the new value.
		s.choose(value)
	}
	if err := s.Object.Set(name, value); err != nil {
		return err
	}
	if name == "elements" {
		s.install(value)
	}
	return nil
}

// CreateBindingTarget implements binding.TargetFactory for the
// "elements" property.
func (s *Selector) CreateBindingTarget(property string) binding.BindingTarget {
	if property != "elements" {
		return nil
	}
	return &elementsTarget{s: s}
}

// Elements returns the current element list.
func (s *Selector) Elements() []interface{} {
	return append([]interface{}{}, s.elements...)
}

// Selection returns the current selection's detail value, nil when
// nothing is selected.
func (s *Selector) Selection() interface{} {
	v := s.Object.Get("selection")
	if observe.IsUnreadable(v) {
		return nil
	}
	return v
}

// SelectedElement returns the element the selection came from, nil
// when the selection does not correspond to an element.
func (s *Selector) SelectedElement() interface{} {
	return s.selected
}

// install replaces the element view with the newly written value.
// An observe.List is followed live; a plain slice is a snapshot; nil
// (or anything else) empties the view.
func (s *Selector) install(value interface{}) {
	s.unwatch()
	s.detachDetail()
	s.selected = nil
	s.elements = nil
	switch vv := value.(type) {
	case *observe.List:
		s.list = vv
		vv.SubscribeElements(s.watch)
		s.elements = vv.Snapshot()
	case []interface{}:
		s.elements = append([]interface{}{}, vv...)
	}
	s.Object.Set("len", len(s.elements))

	switch sel := s.Selection(); {
	case len(s.elements) == 0:
		s.switchTo(nil)
	case sel == nil:
		s.switchTo(s.elements[0])
	default:
		s.choose(sel)
	}
}

func (s *Selector) unwatch() {
	if s.list != nil {
		s.list.UnsubscribeElements(s.watch)
		s.list = nil
	}
}

// choose selects the first element whose detail value equals value.
// A value no element has is an edit of the current selection when a
// detail child is attached to carry it into the element; otherwise
// the value just stands on its own and no element is selected.
func (s *Selector) choose(value interface{}) {
	for _, element := range s.elements {
		if !same(s.detailValue(element), value) {
			continue
		}
		if same(s.selected, element) && (s.detail == nil || s.detail.Bound()) {
			return
		}
		s.switchTo(element)
		return
	}
	if s.detail != nil && s.detail.Bound() {
		return
	}
	s.detachDetail()
	s.selected = nil
}

// switchTo makes element the selection: its detail value is written
// to "selection", and when possible a child Binding is attached to
// keep the two in sync.
func (s *Selector) switchTo(element interface{}) {
	s.detachDetail()
	s.selected = element
	if element == nil {
		s.Object.Set("selection", nil)
		return
	}
	s.Object.Set("selection", s.detailValue(element))

	o, isObservable := element.(observe.Observable)
	if s.ctl == nil || !isObservable || s.detailExpr == "" {
		return
	}
	child := binding.New(nil, s.detailExpr, nil, "")
	if !binding.IsPath(s.detailExpr) {
		// A rich detail can't take writes, so the child only
		// reads.
		child.SetStrategy(binding.Read)
	}
	child.SetEvaluator(s.ctl.Evaluator())
	if err := s.ctl.BindChild(child, o, s.Object, "selection", true); err != nil {
		return
	}
	s.detail = child
}

// detachDetail lets the current detail child go.  A pending edit
// gets one chance to settle through the deferred unbind; whatever is
// still bound afterwards is cut loose.
func (s *Selector) detachDetail() {
	child := s.detail
	s.detail = nil
	if child == nil || !child.Bound() {
		return
	}
	if child.TargetState() != binding.Valid {
		s.ctl.UnbindOnCommit(child)
		child.SetSourceFromTarget()
	}
	if child.Bound() {
		child.Unbind()
	}
}

// detailValue computes element's detail value, nil when it can't be
// computed.
func (s *Selector) detailValue(element interface{}) interface{} {
	if s.detailExpr == "" {
		return element
	}
	o, isObservable := element.(observe.Observable)
	if !isObservable {
		return nil
	}
	v, err := s.template.SourceValueFor(o)
	if err != nil {
		return nil
	}
	return v
}

func (s *Selector) engage(ctl *binding.Controller) {
	s.ctl = ctl
	if s.template != nil {
		s.template.SetEvaluator(ctl.Evaluator())
	}
}

func (s *Selector) release() {
	if s.detail != nil && s.detail.Bound() {
		s.detail.Unbind()
	}
	s.detail = nil
	s.ctl = nil
	if s.template != nil {
		s.template.SetEvaluator(nil)
	}
}

// same compares detail values.  Observables compare by identity,
// everything else by deep equality.
func same(a, b interface{}) bool {
	if oa, is := a.(observe.Observable); is {
		ob, isToo := b.(observe.Observable)
		return isToo && oa == ob
	}
	return reflect.DeepEqual(a, b)
}

// listWatch follows the installed List's membership.
type listWatch struct {
	s *Selector
}

func (w *listWatch) ElementsAdded(l *observe.List, index, count int) {
	s := w.s
	s.elements = l.Snapshot()
	s.Object.Set("len", len(s.elements))
	if len(s.elements) != count || s.Selection() != nil {
		return
	}
	if s.detailValue(s.elements[0]) != nil {
		s.switchTo(s.elements[0])
	}
}

func (w *listWatch) ElementsRemoved(l *observe.List, index int, removed []interface{}) {
	s := w.s
	s.elements = l.Snapshot()
	s.Object.Set("len", len(s.elements))

	sel := s.Selection()
	removedSelected := false
	for _, element := range removed {
		if same(s.detailValue(element), sel) {
			removedSelected = true
			break
		}
	}
	if !removedSelected {
		return
	}
	if len(s.elements) == 0 {
		s.switchTo(nil)
		return
	}
	// The element now at the removed index takes over, or the
	// last one when the removal was at the end.
	i := index
	if len(s.elements) <= i {
		i = len(s.elements) - 1
	}
	s.switchTo(s.elements[i])
}

func (w *listWatch) ElementReplaced(l *observe.List, index int, old interface{}) {
	s := w.s
	s.elements = l.Snapshot()
	if same(s.detailValue(old), s.Selection()) {
		s.switchTo(s.elements[index])
	}
}

// elementsTarget is the BindingTarget a Selector hands to the
// Binding that drives its "elements".
type elementsTarget struct {
	s *Selector
}

func (t *elementsTarget) Bind(ctl *binding.Controller, property string) {
	t.s.engage(ctl)
}

func (t *elementsTarget) Unbind(ctl *binding.Controller, property string) {
	t.s.release()
}

func (t *elementsTarget) SourceStateChanged(ctl *binding.Controller, property string) {
	// Substitute values drive the element view; a state change
	// alone moves nothing.
}

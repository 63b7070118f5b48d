package binding

import (
	"testing"

	"github.com/dave-mccloskey/beansbinding/observe"
)

// widget is an endpoint that takes over management of its "value"
// property, the way a selector or list view would.
type widget struct {
	*observe.Object
	target *widgetTarget
}

func newWidget() *widget {
	return &widget{Object: observe.NewObject()}
}

func (w *widget) CreateBindingTarget(property string) BindingTarget {
	if property != "value" {
		return nil
	}
	w.target = &widgetTarget{}
	return w.target
}

type widgetTarget struct {
	ctl     *Controller
	bound   bool
	unbound int
	states  []ValueState
}

func (wt *widgetTarget) Bind(ctl *Controller, property string) {
	wt.ctl = ctl
	wt.bound = true
}

func (wt *widgetTarget) Unbind(ctl *Controller, property string) {
	wt.bound = false
	wt.unbound++
}

func (wt *widgetTarget) SourceStateChanged(ctl *Controller, property string) {
	wt.states = append(wt.states, ctl.Binding().SourceState())
}

func TestTargetFactory(t *testing.T) {
	src := observe.NewObject()
	src.Set("name", "carl")
	w := newWidget()
	w.Set("value", "")

	b := New(src, "name", w, "value")
	if err := b.Bind(); err != nil {
		t.Fatal(err)
	}

	if w.target == nil || !w.target.bound {
		t.Fatal("target factory not engaged")
	}
	if w.target.ctl.Binding() != b {
		t.Fatal("controller drives the wrong binding")
	}
	if v := w.Get("value"); v != "carl" {
		t.Fatal(v)
	}

	// Source state transitions reach the binding target.
	src.Delete("name")
	if len(w.target.states) != 1 || w.target.states[0] != IncompletePath {
		t.Fatal(w.target.states)
	}

	if err := b.Unbind(); err != nil {
		t.Fatal(err)
	}
	if w.target.bound || w.target.unbound != 1 {
		t.Fatal("target not released")
	}
}

func TestTargetFactoryOtherProperty(t *testing.T) {
	src := observe.NewObject()
	src.Set("name", "carl")
	w := newWidget()
	w.Set("label", "")

	// The factory answers nil for properties it does not manage.
	b := New(src, "name", w, "label")
	if err := b.Bind(); err != nil {
		t.Fatal(err)
	}
	defer b.Unbind()

	if w.target != nil {
		t.Fatal("factory engaged for an unmanaged property")
	}
	if v := w.Get("label"); v != "carl" {
		t.Fatal(v)
	}
}

func TestControllerValueEdited(t *testing.T) {
	src := observe.NewObject()
	src.Set("name", "carl")
	w := newWidget()
	w.Set("value", "")

	b := New(src, "name", w, "value")
	if err := b.Bind(); err != nil {
		t.Fatal(err)
	}
	defer b.Unbind()

	w.target.ctl.ValueEdited()
	if b.TargetState() != Uncommitted {
		t.Fatal(b.TargetState())
	}
}

func TestControllerBindChild(t *testing.T) {
	src := observe.NewObject()
	src.Set("name", "carl")
	w := newWidget()
	w.Set("value", "")

	master := New(src, "name", w, "value")
	if err := master.Bind(); err != nil {
		t.Fatal(err)
	}
	defer master.Unbind()
	ctl := w.target.ctl

	row := observe.NewObject()
	row.Set("street", "elm")
	cell := observe.NewObject()
	cell.Set("text", "")

	// The child declares no endpoints of its own; the controller
	// supplies them.
	detail := New(nil, "street", nil, "")
	if err := ctl.BindChild(detail, row, cell, "text", true); err != nil {
		t.Fatal(err)
	}

	if v := cell.Get("text"); v != "elm" {
		t.Fatal(v)
	}
	if detail.TargetState() != Uncommitted {
		t.Fatal(detail.TargetState())
	}

	// The overrides are live until the child unbinds.
	row.Set("street", "oak")
	if v := cell.Get("text"); v != "oak" {
		t.Fatal(v)
	}

	if err := detail.Unbind(); err != nil {
		t.Fatal(err)
	}
	// Without the controller, the child has no endpoints.
	if err := detail.Bind(); err == nil {
		t.Fatal("child bound without endpoints")
	}
}

func TestControllerUnbindOnCommit(t *testing.T) {
	src := observe.NewObject()
	src.Set("name", "carl")
	w := newWidget()
	w.Set("value", "")

	master := New(src, "name", w, "value")
	if err := master.Bind(); err != nil {
		t.Fatal(err)
	}
	defer master.Unbind()
	ctl := w.target.ctl

	row := observe.NewObject()
	row.Set("street", "elm")
	cell := observe.NewObject()
	cell.Set("text", "")

	detail := New(nil, "street", nil, "")
	if err := ctl.UnbindOnCommit(detail); err == nil {
		t.Fatal("flagged an unbound child")
	}

	if err := ctl.BindChild(detail, row, cell, "text", true); err != nil {
		t.Fatal(err)
	}
	if err := ctl.UnbindOnCommit(detail); err != nil {
		t.Fatal(err)
	}
	if !detail.Bound() {
		t.Fatal("child unbound too early")
	}

	// The next committed value releases the child.
	row.Set("street", "oak")
	if v := cell.Get("text"); v != "oak" {
		t.Fatal(v)
	}
	if detail.Bound() {
		t.Fatal("child still bound after commit")
	}

	row.Set("street", "pine")
	if v := cell.Get("text"); v != "oak" {
		t.Fatal(v)
	}
}

func TestControllerNewResolver(t *testing.T) {
	src := observe.NewObject()
	src.Set("name", "carl")
	w := newWidget()
	w.Set("value", "")

	b := New(src, "name", w, "value")
	if err := b.Bind(); err != nil {
		t.Fatal(err)
	}
	defer b.Unbind()

	row := observe.NewObject()
	row.Set("street", "elm")
	r, err := w.target.ctl.NewResolver(row, "street")
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Evaluate()
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != "elm" {
		t.Fatal(res.Value)
	}
}

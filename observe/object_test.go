package observe

import (
	"reflect"
	"testing"
)

// recorder remembers the notifications it hears.
type recorder struct {
	events []event
}

type event struct {
	name     string
	old, new interface{}
}

func (r *recorder) PropertyChanged(source Observable, name string, old, new interface{}) {
	r.events = append(r.events, event{name, old, new})
}

func (r *recorder) last(t *testing.T) event {
	t.Helper()
	if len(r.events) == 0 {
		t.Fatal("heard nothing")
	}
	return r.events[len(r.events)-1]
}

func TestObjectSetNotifies(t *testing.T) {
	o := NewObject()
	r := &recorder{}
	o.Subscribe("name", r)

	if err := o.Set("name", "Homer"); err != nil {
		t.Fatal(err)
	}
	e := r.last(t)
	if !IsUnreadable(e.old) {
		t.Fatalf("old was %v", e.old)
	}
	if e.new != "Homer" {
		t.Fatal(e.new)
	}

	if err := o.Set("name", "Homer"); err != nil {
		t.Fatal(err)
	}
	if len(r.events) != 1 {
		t.Fatalf("heard %d events for an unchanged value", len(r.events))
	}

	if err := o.Set("name", "Marge"); err != nil {
		t.Fatal(err)
	}
	if e := r.last(t); e.old != "Homer" || e.new != "Marge" {
		t.Fatal(e)
	}
}

func TestObjectGetMissing(t *testing.T) {
	o := NewObject()
	if v := o.Get("nope"); !IsUnreadable(v) {
		t.Fatal(v)
	}
}

func TestObjectDeclaredType(t *testing.T) {
	o := NewObject()
	o.SetTypeOf("age", reflect.TypeOf(0))

	if err := o.Set("age", 39); err != nil {
		t.Fatal(err)
	}
	if err := o.Set("age", int64(40)); err != nil {
		t.Fatal(err)
	}
	if v := o.Get("age"); v != 40 {
		t.Fatalf("got %#v", v)
	}
	err := o.Set("age", "old")
	if err == nil {
		t.Fatal("expected a type complaint")
	}
	if _, is := err.(*WrongType); !is {
		t.Fatal(err)
	}
	if got := TypeOf(o, "age"); got != reflect.TypeOf(0) {
		t.Fatal(got)
	}
}

func TestObjectNumericStringConversion(t *testing.T) {
	o := NewObject()
	o.SetTypeOf("label", reflect.TypeOf(""))
	// 65 must not become "A".
	if err := o.Set("label", 65); err == nil {
		t.Fatal("expected a type complaint")
	}
}

func TestObjectUnreadable(t *testing.T) {
	o := NewObject()
	o.Set("secret", "hunter2")
	r := &recorder{}
	o.Subscribe("secret", r)

	o.SetUnreadable("secret", true)
	if e := r.last(t); e.old != "hunter2" || !IsUnreadable(e.new) {
		t.Fatal(e)
	}
	if v := o.Get("secret"); !IsUnreadable(v) {
		t.Fatal(v)
	}

	// Writes while masked are stored silently.
	n := len(r.events)
	if err := o.Set("secret", "hunter3"); err != nil {
		t.Fatal(err)
	}
	if len(r.events) != n {
		t.Fatal("heard a write to a masked property")
	}

	o.SetUnreadable("secret", false)
	if e := r.last(t); !IsUnreadable(e.old) || e.new != "hunter3" {
		t.Fatal(e)
	}
}

func TestObjectDelete(t *testing.T) {
	o := NewObject()
	o.Set("name", "Homer")
	r := &recorder{}
	o.Subscribe("name", r)
	o.Delete("name")
	if e := r.last(t); e.old != "Homer" || !IsUnreadable(e.new) {
		t.Fatal(e)
	}
	if v := o.Get("name"); !IsUnreadable(v) {
		t.Fatal(v)
	}
}

func TestObjectUnsubscribe(t *testing.T) {
	o := NewObject()
	r := &recorder{}
	o.Subscribe("name", r)
	o.Subscribe("name", r) // again, which should be a no-op
	o.Set("name", "Homer")
	if len(r.events) != 1 {
		t.Fatal(r.events)
	}
	o.Unsubscribe("name", r)
	o.Set("name", "Marge")
	if len(r.events) != 1 {
		t.Fatal(r.events)
	}
}

func TestObjectWildcard(t *testing.T) {
	o := NewObject()
	r := &recorder{}
	o.Subscribe("", r)
	o.Set("a", 1)
	o.Set("b", 2)
	if len(r.events) != 2 {
		t.Fatal(r.events)
	}
	if r.events[0].name != "a" || r.events[1].name != "b" {
		t.Fatal(r.events)
	}
}

func TestHear(t *testing.T) {
	o := NewObject()
	heard := 0
	l := Hear(func(source Observable, name string, old, new interface{}) {
		heard++
	})
	o.Subscribe("x", l)
	o.Set("x", 1)
	o.Unsubscribe("x", l)
	o.Set("x", 2)
	if heard != 1 {
		t.Fatal(heard)
	}
}

func TestObjectProperties(t *testing.T) {
	o := NewObject()
	o.Set("b", 2)
	o.Set("a", 1)
	names := o.Properties()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatal(names)
	}
}

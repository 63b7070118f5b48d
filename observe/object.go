package observe

import (
	"reflect"
	"sort"
)

// An Object is a dynamic, map-backed Observable.  Properties come
// into existence when first Set.
//
// An Object can optionally declare property types (SetTypeOf), which
// makes Set enforce (and convert to) the declared type, and can mark
// properties write-only (SetUnreadable).
type Object struct {
	props  map[string]interface{}
	types  map[string]reflect.Type
	masked map[string]bool
	subs   map[string][]Listener
}

func NewObject() *Object {
	return &Object{
		props:  make(map[string]interface{}),
		types:  make(map[string]reflect.Type),
		masked: make(map[string]bool),
		subs:   make(map[string][]Listener),
	}
}

// Get returns the property's current value, or Unreadable if the
// property does not exist or is currently masked (SetUnreadable).
func (o *Object) Get(name string) interface{} {
	if o.masked[name] {
		return Unreadable
	}
	v, have := o.props[name]
	if !have {
		return Unreadable
	}
	return v
}

// Set stores a property value, creating the property if necessary,
// and notifies subscribers.
//
// When the property has a declared type, the value must be
// assignable or convertible to it; otherwise Set returns a
// *WrongType.  A notification is suppressed when the externally
// observable value did not change, which includes any write to a
// masked property.
func (o *Object) Set(name string, value interface{}) error {
	if t, have := o.types[name]; have && value != nil {
		vt := reflect.TypeOf(value)
		switch {
		case vt.AssignableTo(t):
		case vt.ConvertibleTo(t) && !badConversion(vt, t):
			value = reflect.ValueOf(value).Convert(t).Interface()
		default:
			return &WrongType{Name: name, Declared: t, Value: value}
		}
	}
	old := o.Get(name)
	o.props[name] = value
	if o.masked[name] {
		return nil
	}
	if !sameValue(old, value) {
		o.notify(name, old, value)
	}
	return nil
}

// Delete removes a property.  Subscribers see the value change to
// Unreadable.  The property's declared type, if any, survives.
func (o *Object) Delete(name string) {
	old := o.Get(name)
	if _, have := o.props[name]; !have {
		return
	}
	delete(o.props, name)
	if !o.masked[name] && !IsUnreadable(old) {
		o.notify(name, old, Unreadable)
	}
}

// SetTypeOf declares the property's type.  A nil type removes the
// declaration.  The current value, if any, is left alone.
func (o *Object) SetTypeOf(name string, t reflect.Type) {
	if t == nil {
		delete(o.types, name)
		return
	}
	o.types[name] = t
}

// TypeOf implements Typed.
func (o *Object) TypeOf(name string) reflect.Type {
	return o.types[name]
}

// SetUnreadable masks or unmasks a property.  While masked, Get
// returns Unreadable and writes are stored silently.  Masking and
// unmasking notify subscribers, since the externally observable
// value changes.
func (o *Object) SetUnreadable(name string, u bool) {
	if o.masked[name] == u {
		return
	}
	if u {
		old := o.Get(name)
		o.masked[name] = true
		if !IsUnreadable(old) {
			o.notify(name, old, Unreadable)
		}
		return
	}
	delete(o.masked, name)
	now := o.Get(name)
	if !IsUnreadable(now) {
		o.notify(name, Unreadable, now)
	}
}

// Properties returns the names of the existing properties, sorted.
func (o *Object) Properties() []string {
	names := make([]string, 0, len(o.props))
	for name := range o.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o *Object) Subscribe(name string, l Listener) {
	for _, have := range o.subs[name] {
		if have == l {
			return
		}
	}
	o.subs[name] = append(o.subs[name], l)
}

func (o *Object) Unsubscribe(name string, l Listener) {
	ls := o.subs[name]
	for i, have := range ls {
		if have == l {
			o.subs[name] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (o *Object) notify(name string, old, new interface{}) {
	// Snapshot so a listener can (un)subscribe during delivery.
	for _, l := range append([]Listener{}, o.subs[name]...) {
		l.PropertyChanged(o, name, old, new)
	}
	for _, l := range append([]Listener{}, o.subs[""]...) {
		l.PropertyChanged(o, name, old, new)
	}
}

// badConversion rejects reflect conversions that are legal but
// almost never meant, like int 65 to string "A".
func badConversion(from, to reflect.Type) bool {
	if to.Kind() != reflect.String {
		return false
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

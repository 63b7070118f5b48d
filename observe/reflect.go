package observe

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// A Struct is an Observable view of an ordinary Go struct.
//
// Exported fields become properties.  A field's property name is the
// field name with its first byte lowercased, or the name given by
// the field's json tag if there is one; a json tag of "-" hides the
// field.  Writes through Set notify subscribers; writes made
// directly to the struct do not, but the owner can announce one with
// Changed.
type Struct struct {
	v      reflect.Value
	fields map[string]int
	subs   map[string][]Listener
}

// Wrap returns a Struct backed by x, which must be a non-nil pointer
// to a struct.
func Wrap(x interface{}) (*Struct, error) {
	v := reflect.ValueOf(x)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("observe: Wrap wants a pointer to a struct, not %T", x)
	}
	v = v.Elem()
	s := &Struct{
		v:      v,
		fields: make(map[string]int),
		subs:   make(map[string][]Listener),
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || f.Anonymous {
			continue
		}
		name := propertyName(f)
		if name == "" {
			continue
		}
		s.fields[name] = i
	}
	return s, nil
}

func propertyName(f reflect.StructField) string {
	name := strings.ToLower(string(f.Name[0])) + f.Name[1:]
	if tag := f.Tag.Get("json"); tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] == "-" {
			return ""
		}
		if parts[0] != "" {
			name = parts[0]
		}
	}
	return name
}

func (s *Struct) Get(name string) interface{} {
	i, have := s.fields[name]
	if !have {
		return Unreadable
	}
	return s.v.Field(i).Interface()
}

// Set writes a field.  The value must be assignable or convertible
// to the field's type; nil zeroes the field.
func (s *Struct) Set(name string, value interface{}) error {
	i, have := s.fields[name]
	if !have {
		return &NoSuchProperty{Name: name}
	}
	f := s.v.Field(i)
	old := f.Interface()
	if value == nil {
		f.Set(reflect.Zero(f.Type()))
	} else {
		vv := reflect.ValueOf(value)
		switch {
		case vv.Type().AssignableTo(f.Type()):
			f.Set(vv)
		case vv.Type().ConvertibleTo(f.Type()) && !badConversion(vv.Type(), f.Type()):
			f.Set(vv.Convert(f.Type()))
		default:
			return &WrongType{Name: name, Declared: f.Type(), Value: value}
		}
	}
	if now := f.Interface(); !sameValue(old, now) {
		s.notify(name, old, now)
	}
	return nil
}

// TypeOf implements Typed with the field's static type.
func (s *Struct) TypeOf(name string) reflect.Type {
	i, have := s.fields[name]
	if !have {
		return nil
	}
	return s.v.Field(i).Type()
}

// Changed announces that a property was mutated directly on the
// underlying struct.  The old value is reported as nil, since the
// Struct never saw it.
func (s *Struct) Changed(name string) {
	i, have := s.fields[name]
	if !have {
		return
	}
	s.notify(name, nil, s.v.Field(i).Interface())
}

// Properties returns the property names, sorted.
func (s *Struct) Properties() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Struct) Subscribe(name string, l Listener) {
	for _, have := range s.subs[name] {
		if have == l {
			return
		}
	}
	s.subs[name] = append(s.subs[name], l)
}

func (s *Struct) Unsubscribe(name string, l Listener) {
	ls := s.subs[name]
	for i, have := range ls {
		if have == l {
			s.subs[name] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (s *Struct) notify(name string, old, new interface{}) {
	for _, l := range append([]Listener{}, s.subs[name]...) {
		l.PropertyChanged(s, name, old, new)
	}
	for _, l := range append([]Listener{}, s.subs[""]...) {
		l.PropertyChanged(s, name, old, new)
	}
}

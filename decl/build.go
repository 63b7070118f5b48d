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

package decl

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/dave-mccloskey/beansbinding/binding"
	"github.com/dave-mccloskey/beansbinding/observe"
)

// A World is a built Document: the declared objects, live, and the
// declared bindings, collected in a Context and ready to Bind.
type World struct {
	Name    string
	Objects map[string]*observe.Object
	Context *binding.Context
}

// Build instantiates a Document.  Each declared object becomes an
// observe.Object carrying its declared types and initial properties,
// and each declared binding becomes an unbound binding.Binding in a
// fresh Context that shares the given Evaluator.
//
// Nothing is bound yet; call World.Bind.
func Build(d *Document, e binding.Evaluator) (*World, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		Name:    d.Name,
		Objects: make(map[string]*observe.Object, len(d.Objects)),
		Context: binding.NewContext(),
	}
	w.Context.SetEvaluator(e)

	for _, name := range sortedNames(d.Objects) {
		o := observe.NewObject()
		if od := d.Objects[name]; od != nil {
			for _, prop := range sortedProps(od.Types) {
				t, err := TypeNamed(od.Types[prop])
				if err != nil {
					return nil, fmt.Errorf("object %q: property %q: %v", name, prop, err)
				}
				o.SetTypeOf(prop, t)
			}
			for _, prop := range sortedAnyProps(od.Props) {
				if err := o.Set(prop, od.Props[prop]); err != nil {
					return nil, fmt.Errorf("object %q: %v", name, err)
				}
			}
		}
		w.Objects[name] = o
	}

	for i, bd := range d.Bindings {
		b := binding.NewNamed(bd.Name, w.Objects[bd.Source], bd.Expr, w.Objects[bd.Target], bd.Path)
		s, _ := ParseStrategy(bd.Strategy)
		b.SetStrategy(s)
		if bd.Converter != "" {
			b.SetConverter(Converters[bd.Converter])
		}
		if bd.NullSource != nil {
			b.SetNullSourceValue(*bd.NullSource)
		}
		if bd.NullTarget != nil {
			b.SetNullTargetValue(*bd.NullTarget)
		}
		if bd.IncompleteSource != nil {
			b.SetIncompleteSourceValue(*bd.IncompleteSource)
		}
		if bd.IncompleteTarget != nil {
			b.SetIncompleteTargetValue(*bd.IncompleteTarget)
		}
		if err := w.Context.Add(b); err != nil {
			return nil, fmt.Errorf("binding %s: %v", bd.label(i), err)
		}
	}

	return w, nil
}

// Bind binds every declared binding, in declaration order.  The
// first failure stops the pass.
func (w *World) Bind() error {
	return w.Context.Bind()
}

// Unbind unbinds them all.
func (w *World) Unbind() error {
	return w.Context.Unbind()
}

// Object returns a declared object, or nil.
func (w *World) Object(name string) *observe.Object {
	return w.Objects[name]
}

// Binding returns a declared binding by name, or nil.
func (w *World) Binding(name string) *binding.Binding {
	return w.Context.Binding(name)
}

// ParseStrategy maps a declaration's strategy string to a
// binding.Strategy.  The empty string means ReadWrite.
func ParseStrategy(s string) (binding.Strategy, error) {
	switch s {
	case "", "read-write":
		return binding.ReadWrite, nil
	case "read":
		return binding.Read, nil
	case "read-once":
		return binding.ReadOnce, nil
	}
	return binding.ReadWrite, fmt.Errorf("unknown strategy %q", s)
}

// StrategyName is ParseStrategy's inverse.
func StrategyName(s binding.Strategy) string {
	switch s {
	case binding.Read:
		return "read"
	case binding.ReadOnce:
		return "read-once"
	}
	return "read-write"
}

var typesByName = map[string]reflect.Type{
	"string":  reflect.TypeOf(""),
	"bool":    reflect.TypeOf(false),
	"int":     reflect.TypeOf(int(0)),
	"int8":    reflect.TypeOf(int8(0)),
	"int16":   reflect.TypeOf(int16(0)),
	"int32":   reflect.TypeOf(int32(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"uint":    reflect.TypeOf(uint(0)),
	"uint8":   reflect.TypeOf(uint8(0)),
	"uint16":  reflect.TypeOf(uint16(0)),
	"uint32":  reflect.TypeOf(uint32(0)),
	"uint64":  reflect.TypeOf(uint64(0)),
	"float":   reflect.TypeOf(float64(0)),
	"float32": reflect.TypeOf(float32(0)),
	"float64": reflect.TypeOf(float64(0)),
}

// TypeNamed resolves a declaration's property type name ("int",
// "string", "float64", ...) to a reflect.Type.  "float" is an alias
// for "float64".
func TypeNamed(name string) (reflect.Type, error) {
	t, have := typesByName[name]
	if !have {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

// Converters maps the names a declaration can use in a binding's
// converter field.  "string", "int", "float", and "bool" coerce the
// source value to that kind on the way to the target; they are
// one-way, so they suit read and read-once strategies.  "negate"
// flips a bool in both directions.
//
// A host can add entries before Build.
var Converters = map[string]binding.Converter{
	"string": coercion(reflect.TypeOf("")),
	"int":    coercion(reflect.TypeOf(int64(0))),
	"float":  coercion(reflect.TypeOf(float64(0))),
	"bool":   coercion(reflect.TypeOf(false)),
	"negate": binding.Convert(negate, negate),
}

// basics serves the named coercions, whatever the incoming kind.
var basics = binding.DefaultConverters()

func coercion(t reflect.Type) binding.Converter {
	return binding.Convert(func(v interface{}) (interface{}, error) {
		src := reflect.TypeOf(v)
		if src == t {
			return v, nil
		}
		c := basics.Find(src, t)
		if c == nil {
			return nil, fmt.Errorf("cannot convert %T to %v", v, t)
		}
		return c.SourceToTarget(v)
	}, nil)
}

func negate(v interface{}) (interface{}, error) {
	b, is := v.(bool)
	if !is {
		return nil, fmt.Errorf("cannot negate %T", v)
	}
	return !b, nil
}

func sortedNames(m map[string]*ObjectDecl) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedProps(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedAnyProps(m map[string]interface{}) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

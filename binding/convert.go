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
	"fmt"
	"reflect"
	"strconv"
)

// A Converter translates values travelling from source to target
// (SourceToTarget) and back (TargetToSource).
//
// A returned error is a recoverable rejection of that one value: the
// Binding marks the offending side Invalid and reports
// ConversionFailed, but stays bound.  Converters never see nil;
// nil values are replaced by the configured substitutes first.
type Converter interface {
	SourceToTarget(v interface{}) (interface{}, error)
	TargetToSource(v interface{}) (interface{}, error)
}

// Convert builds a Converter from a forward and a reverse function.
// A nil reverse makes a one-way Converter whose TargetToSource
// always fails, which is fine for Read and ReadOnce bindings.
func Convert(forward, reverse func(interface{}) (interface{}, error)) Converter {
	return &funcConverter{forward, reverse}
}

type funcConverter struct {
	forward, reverse func(interface{}) (interface{}, error)
}

func (c *funcConverter) SourceToTarget(v interface{}) (interface{}, error) {
	return c.forward(v)
}

func (c *funcConverter) TargetToSource(v interface{}) (interface{}, error) {
	if c.reverse == nil {
		return nil, fmt.Errorf("converter is one-way")
	}
	return c.reverse(v)
}

// A Registry finds Converters by (source type, target type) pair.
//
// A Binding without an explicit Converter asks a Registry: its own,
// its Context's, or the package default.  NewRegistry gives an empty
// registry, for tests that want full control; DefaultConverters adds
// fallback conversions between the basic kinds (numbers, strings,
// bools).
type Registry struct {
	table map[convKey]Converter
	basic bool
}

type convKey struct {
	src, dst reflect.Type
}

func NewRegistry() *Registry {
	return &Registry{table: make(map[convKey]Converter)}
}

// DefaultConverters returns a fresh Registry that falls back to the
// standard conversions among strings, bools, and the numeric kinds.
func DefaultConverters() *Registry {
	r := NewRegistry()
	r.basic = true
	return r
}

// std serves Bindings that have no Registry anywhere.
var std = DefaultConverters()

// Register installs c for values travelling src to dst.  Find also
// consults the pair reversed, using c's opposite direction, so one
// registration serves both ways.
func (r *Registry) Register(src, dst reflect.Type, c Converter) {
	r.table[convKey{src, dst}] = c
}

// Find returns a Converter whose SourceToTarget takes src to dst, or
// nil when the registry has nothing to offer.
func (r *Registry) Find(src, dst reflect.Type) Converter {
	if src == nil || dst == nil {
		return nil
	}
	if src == dst {
		return nil
	}
	if c, have := r.table[convKey{src, dst}]; have {
		return c
	}
	if c, have := r.table[convKey{dst, src}]; have {
		return &reversed{c}
	}
	if r.basic && basicKind(src.Kind()) && basicKind(dst.Kind()) {
		return &basicConverter{src: src, dst: dst}
	}
	return nil
}

type reversed struct {
	c Converter
}

func (r *reversed) SourceToTarget(v interface{}) (interface{}, error) {
	return r.c.TargetToSource(v)
}

func (r *reversed) TargetToSource(v interface{}) (interface{}, error) {
	return r.c.SourceToTarget(v)
}

func basicKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// basicConverter converts between two basic kinds via strconv and
// reflect.
type basicConverter struct {
	src, dst reflect.Type
}

func (c *basicConverter) SourceToTarget(v interface{}) (interface{}, error) {
	return convertBasic(v, c.dst)
}

func (c *basicConverter) TargetToSource(v interface{}) (interface{}, error) {
	return convertBasic(v, c.src)
}

func convertBasic(v interface{}, t reflect.Type) (interface{}, error) {
	vv := reflect.ValueOf(v)
	if !basicKind(vv.Kind()) {
		return nil, fmt.Errorf("cannot convert %T to %v", v, t)
	}
	if vv.Type() == t {
		return v, nil
	}
	bad := func() (interface{}, error) {
		return nil, fmt.Errorf("cannot convert %#v to %v", v, t)
	}
	switch t.Kind() {
	case reflect.String:
		switch vv.Kind() {
		case reflect.Bool:
			return asType(strconv.FormatBool(vv.Bool()), t), nil
		case reflect.Float32, reflect.Float64:
			// Format at the source's precision, so a float32
			// doesn't render with float64 noise digits.
			bits := 64
			if vv.Kind() == reflect.Float32 {
				bits = 32
			}
			return asType(strconv.FormatFloat(vv.Float(), 'g', -1, bits), t), nil
		case reflect.String:
			return asType(vv.String(), t), nil
		}
		if isUint(vv.Kind()) {
			return asType(strconv.FormatUint(vv.Uint(), 10), t), nil
		}
		return asType(strconv.FormatInt(vv.Int(), 10), t), nil
	case reflect.Bool:
		if vv.Kind() != reflect.String {
			return bad()
		}
		b, err := strconv.ParseBool(vv.String())
		if err != nil {
			return bad()
		}
		return asType(b, t), nil
	}
	// The remaining destinations are numeric.
	switch vv.Kind() {
	case reflect.Bool:
		return bad()
	case reflect.String:
		switch {
		case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
			f, err := strconv.ParseFloat(vv.String(), 64)
			if err != nil {
				return bad()
			}
			vv = reflect.ValueOf(f)
		case isUint(t.Kind()):
			u, err := strconv.ParseUint(vv.String(), 10, 64)
			if err != nil {
				return bad()
			}
			vv = reflect.ValueOf(u)
		default:
			i, err := strconv.ParseInt(vv.String(), 10, 64)
			if err != nil {
				return bad()
			}
			vv = reflect.ValueOf(i)
		}
	}
	if !vv.Type().ConvertibleTo(t) {
		return bad()
	}
	return vv.Convert(t).Interface(), nil
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// asType covers named types like `type Celsius float64`.
func asType(v interface{}, t reflect.Type) interface{} {
	vv := reflect.ValueOf(v)
	if vv.Type() == t {
		return v
	}
	return vv.Convert(t).Interface()
}

// coerce substitutes a type's zero value when nil is written to a
// property whose declared type cannot hold nil.
func coerce(v interface{}, t reflect.Type) interface{} {
	if v != nil || t == nil {
		return v
	}
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
		return nil
	}
	return reflect.Zero(t).Interface()
}

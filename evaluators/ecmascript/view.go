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

package ecmascript

import (
	"github.com/dave-mccloskey/beansbinding/observe"

	"github.com/dop251/goja"
)

// jsView exposes an Observable to a goja runtime as a
// goja.DynamicObject.
//
// Reads go straight to the Observable, so the script always sees
// current values.  An unreadable read comes back as undefined and
// sets saw, which the Evaluator checks afterwards to classify the
// whole result Incomplete.  Nested Observables get their own views
// sharing the same flag, and Lists become arrays.
//
// Writes and deletes are refused: evaluation must not change the
// model.  The program is compiled non-strict, so a refused write is
// just ignored.
type jsView struct {
	o   observe.Observable
	rt  *goja.Runtime
	saw *bool
}

func (j *jsView) Get(key string) goja.Value {
	v := j.o.Get(key)
	if observe.IsUnreadable(v) {
		*j.saw = true
		return goja.Undefined()
	}
	return j.wrap(v)
}

// wrap converts a property value for the runtime.  The List case
// has to come before the Observable case since a *List is one.
func (j *jsView) wrap(v interface{}) goja.Value {
	switch vv := v.(type) {
	case *observe.List:
		elements := vv.Snapshot()
		out := make([]interface{}, 0, len(elements))
		for _, elt := range elements {
			if o, is := elt.(observe.Observable); is {
				out = append(out, j.rt.NewDynamicObject(&jsView{
					o:   o,
					rt:  j.rt,
					saw: j.saw,
				}))
				continue
			}
			out = append(out, elt)
		}
		return j.rt.ToValue(out)
	case observe.Observable:
		return j.rt.NewDynamicObject(&jsView{
			o:   vv,
			rt:  j.rt,
			saw: j.saw,
		})
	}
	return j.rt.ToValue(v)
}

func (j *jsView) Set(key string, val goja.Value) bool {
	return false
}

func (j *jsView) Has(key string) bool {
	return !observe.IsUnreadable(j.o.Get(key))
}

func (j *jsView) Delete(key string) bool {
	return false
}

func (j *jsView) Keys() []string {
	if p, is := j.o.(interface{ Properties() []string }); is {
		return p.Properties()
	}
	return nil
}

// unwrap recovers the Observables behind any views in an exported
// result, so an expression that fans out over a List yields the
// same elements a fanned-out path would.
func unwrap(x interface{}) interface{} {
	switch vv := x.(type) {
	case *jsView:
		return vv.o
	case *goja.Object:
		return unwrap(vv.Export())
	case []interface{}:
		for i, elt := range vv {
			vv[i] = unwrap(elt)
		}
	}
	return x
}

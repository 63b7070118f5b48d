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

// Parameters are an open-ended configuration store on a Binding,
// read mostly by extension points (see TargetFactory), so that those
// collaborators can accept caller options without the Binding
// growing a field for each one.
//
// A key is a *ParamKey[T] value: keys are compared by identity, so
// two keys made with the same description are still different keys,
// and the T travels with the key to keep reads and writes
// type-checked at the call site.

// A ParamKey names a Binding parameter carrying values of type T.
// Make one with NewParamKey and keep it somewhere shared.
type ParamKey[T any] struct {
	desc string
}

// NewParamKey makes a new, distinct key.  The description is only
// for humans.
func NewParamKey[T any](desc string) *ParamKey[T] {
	return &ParamKey[T]{desc: desc}
}

func (k *ParamKey[T]) String() string {
	return k.desc
}

// PutParam stores a parameter value on b.  Fails while b is bound,
// like any other configuration change.
func PutParam[T any](b *Binding, key *ParamKey[T], value T) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	if b.params == nil {
		b.params = make(map[interface{}]interface{})
	}
	b.params[key] = value
	return nil
}

// RemoveParam removes a parameter from b.  Fails while b is bound.
func RemoveParam[T any](b *Binding, key *ParamKey[T]) error {
	if b.bound {
		return &AlreadyBound{b}
	}
	delete(b.params, key)
	return nil
}

// Param reads a parameter from b, returning def when the parameter
// was never put.
func Param[T any](b *Binding, key *ParamKey[T], def T) T {
	v, have := b.params[key]
	if !have {
		return def
	}
	return v.(T)
}

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
	"reflect"
	"strings"

	"github.com/dave-mccloskey/beansbinding/observe"
)

// A PathResolver walks a dotted property path from a root
// Observable.
//
// While bound, the resolver subscribes to every segment along the
// currently reachable prefix.  When an intermediate value changes,
// subscriptions past that point are torn down and rebuilt along the
// new chain, and the delegate hears about it exactly once.
//
// A path may cross an observe.List: a segment name asked of a List
// (other than the List's own "elements" and "len") is mapped over
// the List's elements instead, and the resolver becomes
// multi-valued.  A multi-valued resolver subscribes to the List's
// membership, not to the individual elements; tracking elements is
// the business of child bindings.  Fan-out happens at most once per
// path.
type PathResolver struct {
	root     observe.Observable
	path     []string
	onChange func()
	bound    bool
	hops     []*hop
}

// ParsePath splits a dotted property path.  The path must be
// non-empty, with non-empty segments.
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return nil, &BadPath{Path: path}
	}
	segments := strings.Split(path, ".")
	for _, s := range segments {
		if s == "" {
			return nil, &BadPath{Path: path}
		}
	}
	return segments, nil
}

// NewPathResolver makes an unbound resolver.  onChange, which may be
// nil, is called after any externally observable change along the
// bound path.
func NewPathResolver(root observe.Observable, path string, onChange func()) (*PathResolver, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return &PathResolver{
		root:     root,
		path:     segments,
		onChange: onChange,
	}, nil
}

// A hop is one live subscription along the path.
type hop struct {
	r     *PathResolver
	index int
	on    observe.Observable
	name  string
}

func (h *hop) PropertyChanged(source observe.Observable, name string, old, new interface{}) {
	h.r.segmentChanged(h.index)
}

// Bind installs subscriptions along the reachable prefix.  It does
// not call onChange.
func (r *PathResolver) Bind() {
	if r.bound {
		return
	}
	r.bound = true
	r.subscribeFrom(0, r.root)
}

// Unbind removes all subscriptions.
func (r *PathResolver) Unbind() {
	if !r.bound {
		return
	}
	r.bound = false
	r.dropFrom(0)
}

func (r *PathResolver) subscribeFrom(i int, at observe.Observable) {
	for ; i < len(r.path); i++ {
		if at == nil {
			return
		}
		if list, fanned := fanOut(at, r.path[i]); fanned {
			h := &hop{r: r, index: i, on: list, name: "elements"}
			list.Subscribe("elements", h)
			r.hops = append(r.hops, h)
			return
		}
		h := &hop{r: r, index: i, on: at, name: r.path[i]}
		at.Subscribe(r.path[i], h)
		r.hops = append(r.hops, h)
		at = step(at, r.path[i])
	}
}

func (r *PathResolver) dropFrom(i int) {
	keep := r.hops[:0]
	for _, h := range r.hops {
		if h.index < i {
			keep = append(keep, h)
			continue
		}
		h.on.Unsubscribe(h.name, h)
	}
	r.hops = keep
}

func (r *PathResolver) segmentChanged(i int) {
	if !r.bound {
		return
	}
	r.dropFrom(i + 1)
	// Re-walk to where the change happened, then extend.
	at := r.root
	for j := 0; j < i+1 && at != nil; j++ {
		if _, fanned := fanOut(at, r.path[j]); fanned {
			at = nil
			break
		}
		at = step(at, r.path[j])
	}
	r.subscribeFrom(i+1, at)
	if r.onChange != nil {
		r.onChange()
	}
}

// fanOut reports whether asking at for name means mapping over list
// elements.
func fanOut(at observe.Observable, name string) (*observe.List, bool) {
	list, isList := at.(*observe.List)
	if !isList || name == "elements" || name == "len" {
		return nil, false
	}
	return list, true
}

// step follows one segment, returning the next Observable or nil.
func step(at observe.Observable, name string) observe.Observable {
	v := at.Get(name)
	if v == nil || observe.IsUnreadable(v) {
		return nil
	}
	next, isObservable := v.(observe.Observable)
	if !isObservable {
		return nil
	}
	return next
}

// resolve walks the current values.  owner is the Observable holding
// the final property; list and rest are set instead when the path
// fans out.
func (r *PathResolver) resolve() (owner observe.Observable, list *observe.List, rest []string) {
	at := r.root
	for i := 0; i < len(r.path)-1; i++ {
		if l, fanned := fanOut(at, r.path[i]); fanned {
			return nil, l, r.path[i:]
		}
		at = step(at, r.path[i])
		if at == nil {
			return nil, nil, nil
		}
	}
	last := r.path[len(r.path)-1]
	if l, fanned := fanOut(at, last); fanned {
		return nil, l, r.path[len(r.path)-1:]
	}
	return at, nil, nil
}

// HasAllPathValues reports whether the final property is reachable:
// no intermediate segment evaluates to an absent value.  The final
// property's own readability is a separate question; see
// ValueOfLastProperty.  A fanned-out path counts as reachable.
func (r *PathResolver) HasAllPathValues() bool {
	owner, list, _ := r.resolve()
	return owner != nil || list != nil
}

// MultiValued reports whether the path currently fans out over list
// elements.
func (r *PathResolver) MultiValued() bool {
	_, list, _ := r.resolve()
	return list != nil
}

// LastSource returns the Observable owning the final property, or
// nil when the path is incomplete or fanned out.
func (r *PathResolver) LastSource() observe.Observable {
	owner, _, _ := r.resolve()
	return owner
}

// TypeOfLastProperty returns the declared or dynamic type of the
// final property, or nil when unknown.
func (r *PathResolver) TypeOfLastProperty() reflect.Type {
	owner, _, _ := r.resolve()
	if owner == nil {
		return nil
	}
	return observe.TypeOf(owner, r.path[len(r.path)-1])
}

// ValueOfLastProperty returns the final property's current value,
// which may be observe.Unreadable.  When the path fans out, the
// value is a []interface{} with one entry per list element: the rest
// of the path evaluated on that element, or nil where it cannot be.
// Returns observe.Unreadable when the path is incomplete.
func (r *PathResolver) ValueOfLastProperty() interface{} {
	owner, list, rest := r.resolve()
	if list != nil {
		values := make([]interface{}, 0, list.Len())
		for _, element := range list.Snapshot() {
			values = append(values, valueAt(element, rest))
		}
		return values
	}
	if owner == nil {
		return observe.Unreadable
	}
	return owner.Get(r.path[len(r.path)-1])
}

// valueAt evaluates a path against one list element, without any
// further fan-out.
func valueAt(element interface{}, path []string) interface{} {
	at, isObservable := element.(observe.Observable)
	if !isObservable {
		return nil
	}
	for i := 0; i < len(path)-1; i++ {
		at = step(at, path[i])
		if at == nil {
			return nil
		}
	}
	v := at.Get(path[len(path)-1])
	if observe.IsUnreadable(v) {
		return nil
	}
	return v
}

// SetValueOfLastProperty writes the final property, coercing nil to
// the declared type's zero value when the type cannot hold nil.
func (r *PathResolver) SetValueOfLastProperty(v interface{}) error {
	owner, list, _ := r.resolve()
	if list != nil {
		return &NotWritable{Expr: strings.Join(r.path, ".")}
	}
	if owner == nil {
		return &BadPath{Path: strings.Join(r.path, ".")}
	}
	return owner.Set(r.path[len(r.path)-1], coerce(v, r.TypeOfLastProperty()))
}

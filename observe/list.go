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

package observe

import (
	"reflect"
)

// A ListListener receives membership-change notifications from a
// List.  Indexes refer to positions at the time of the event.
//
// Like Listeners, ListListeners are compared with == for removal.
type ListListener interface {
	ElementsAdded(l *List, index, count int)
	ElementsRemoved(l *List, index int, removed []interface{})
	ElementReplaced(l *List, index int, old interface{})
}

// A List is an observable ordered collection.
//
// A List is also an Observable with two synthetic properties:
// "elements", the current elements as a fresh slice, and "len".  Any
// membership change notifies subscribers of both (of "len" only when
// the length actually changed).  ListListeners hear the specific
// membership event first, then property subscribers.
type List struct {
	elements []interface{}
	elSubs   []ListListener
	subs     map[string][]Listener
}

func NewList(elements ...interface{}) *List {
	return &List{
		elements: append([]interface{}{}, elements...),
		subs:     make(map[string][]Listener),
	}
}

func (l *List) Len() int {
	return len(l.elements)
}

// At returns the element at index i.  Panics if i is out of range,
// as a slice index would.
func (l *List) At(i int) interface{} {
	return l.elements[i]
}

// IndexOf returns the index of the first element equal to x, or -1.
// Elements of uncomparable dynamic types never match.
func (l *List) IndexOf(x interface{}) int {
	for i, e := range l.elements {
		if sameValue(e, x) {
			return i
		}
	}
	return -1
}

// Snapshot returns a copy of the current elements.
func (l *List) Snapshot() []interface{} {
	return append([]interface{}{}, l.elements...)
}

// Append adds values at the end of the list.
func (l *List) Append(values ...interface{}) {
	if len(values) == 0 {
		return
	}
	old := l.begin()
	at := len(l.elements)
	l.elements = append(l.elements, values...)
	for _, el := range l.elSubs {
		el.ElementsAdded(l, at, len(values))
	}
	l.settle(old)
}

// InsertAt inserts value at index i.  Panics if i is out of range;
// i == Len() appends.
func (l *List) InsertAt(i int, value interface{}) {
	if i == len(l.elements) {
		l.Append(value)
		return
	}
	_ = l.elements[i]
	old := l.begin()
	l.elements = append(l.elements, nil)
	copy(l.elements[i+1:], l.elements[i:])
	l.elements[i] = value
	for _, el := range l.elSubs {
		el.ElementsAdded(l, i, 1)
	}
	l.settle(old)
}

// RemoveAt removes and returns the element at index i.  Panics if i
// is out of range.
func (l *List) RemoveAt(i int) interface{} {
	removed := l.elements[i]
	old := l.begin()
	l.elements = append(l.elements[:i], l.elements[i+1:]...)
	for _, el := range l.elSubs {
		el.ElementsRemoved(l, i, []interface{}{removed})
	}
	l.settle(old)
	return removed
}

// SetAt replaces the element at index i, returning the old element.
// Panics if i is out of range.
func (l *List) SetAt(i int, value interface{}) interface{} {
	replaced := l.elements[i]
	old := l.begin()
	l.elements[i] = value
	for _, el := range l.elSubs {
		el.ElementReplaced(l, i, replaced)
	}
	l.settle(old)
	return replaced
}

// SetAll replaces the entire contents.  ListListeners hear a removal
// of the old elements followed by an addition of the new ones.
func (l *List) SetAll(values []interface{}) {
	old := l.begin()
	removed := l.elements
	l.elements = append([]interface{}{}, values...)
	if 0 < len(removed) {
		for _, el := range l.elSubs {
			el.ElementsRemoved(l, 0, removed)
		}
	}
	if 0 < len(l.elements) {
		for _, el := range l.elSubs {
			el.ElementsAdded(l, 0, len(l.elements))
		}
	}
	l.settle(old)
}

func (l *List) SubscribeElements(el ListListener) {
	for _, have := range l.elSubs {
		if have == el {
			return
		}
	}
	l.elSubs = append(l.elSubs, el)
}

func (l *List) UnsubscribeElements(el ListListener) {
	for i, have := range l.elSubs {
		if have == el {
			l.elSubs = append(l.elSubs[:i:i], l.elSubs[i+1:]...)
			return
		}
	}
}

// Get implements Observable: "elements" and "len".
func (l *List) Get(name string) interface{} {
	switch name {
	case "elements":
		return l.Snapshot()
	case "len":
		return len(l.elements)
	}
	return Unreadable
}

// Set implements Observable.  Only "elements" is writable, with any
// slice (or nil, which empties the list).
func (l *List) Set(name string, value interface{}) error {
	switch name {
	case "elements":
		elements, ok := asElements(value)
		if !ok {
			return &WrongType{Name: name, Declared: reflect.TypeOf([]interface{}{}), Value: value}
		}
		l.SetAll(elements)
		return nil
	case "len":
		return &Unwritable{Name: name}
	}
	return &NoSuchProperty{Name: name}
}

func (l *List) Subscribe(name string, sub Listener) {
	for _, have := range l.subs[name] {
		if have == sub {
			return
		}
	}
	l.subs[name] = append(l.subs[name], sub)
}

func (l *List) Unsubscribe(name string, sub Listener) {
	ls := l.subs[name]
	for i, have := range ls {
		if have == sub {
			l.subs[name] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// begin snapshots state before a mutation so settle can report
// property changes afterwards.
func (l *List) begin() []interface{} {
	return l.Snapshot()
}

func (l *List) settle(old []interface{}) {
	now := l.Snapshot()
	l.notify("elements", old, now)
	if len(old) != len(now) {
		l.notify("len", len(old), len(now))
	}
}

func (l *List) notify(name string, old, new interface{}) {
	for _, sub := range append([]Listener{}, l.subs[name]...) {
		sub.PropertyChanged(l, name, old, new)
	}
	for _, sub := range append([]Listener{}, l.subs[""]...) {
		sub.PropertyChanged(l, name, old, new)
	}
}

func asElements(x interface{}) ([]interface{}, bool) {
	if x == nil {
		return nil, true
	}
	if elements, ok := x.([]interface{}); ok {
		return elements, true
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		elements := make([]interface{}, v.Len())
		for i := range elements {
			elements[i] = v.Index(i).Interface()
		}
		return elements, true
	}
	return nil, false
}

/* Copyright 2019 Comcast Cable Communications Management, LLC
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

// Package remote bridges Observables over the network.
//
// A Server exposes a set of named Observables over a WebSocket
// endpoint: it forwards their property changes to every connection
// and applies inbound set/get ops.  A Client dials a Server and
// presents each remote object as a local observe.Observable proxy,
// so a binding can keep a local property synchronized with a remote
// one.  An MQTTBridge does the same sort of thing over an MQTT
// broker, one topic per property.
//
// These bridges move property values only; they never touch the
// binding engine.  Values cross the wire as JSON, so they arrive in
// the generic shapes JSON gives (float64 numbers and so on).
//
// The engine assumes single-threaded use (see package binding), and
// a bridge delivers inbound mutations on its own goroutine.  A host
// that binds bridged endpoints must serialize: set the bridge's
// Serialize hook to funnel mutations into the goroutine that owns
// the bindings.  cmd/bindhost shows the arrangement.
package remote

import (
	"encoding/json"

	"github.com/dave-mccloskey/beansbinding/observe"
)

// An Op is one request to a Server: write a property, read one, or
// ask for a whole object.
type Op struct {
	// Op is "set", "get", or "snapshot".
	Op string `json:"op"`

	// Object names the exported object.
	Object string `json:"object,omitempty"`

	// Property names the property for set and get.
	Property string `json:"property,omitempty"`

	// Value is the value to write for set.
	Value *Value `json:"value,omitempty"`

	// Id, if given, is echoed in the Event answering this Op.
	Id string `json:"id,omitempty"`
}

// An Event is one message from a Server.
type Event struct {
	// Event is "change", "value", "snapshot", or "error".
	Event string `json:"event"`

	Object   string `json:"object,omitempty"`
	Property string `json:"property,omitempty"`

	// Old and New accompany a change.
	Old *Value `json:"old,omitempty"`
	New *Value `json:"new,omitempty"`

	// Value answers a get.
	Value *Value `json:"value,omitempty"`

	// Props answers a snapshot.
	Props map[string]*Value `json:"props,omitempty"`

	Error string `json:"error,omitempty"`

	// Id is the id of the Op this Event answers, if any.
	Id string `json:"id,omitempty"`
}

// A Value carries one property value on the wire.  The Unreadable
// sentinel crosses as {"unreadable":true}.
type Value struct {
	X interface{}
}

// NewValue wraps a value for the wire.
func NewValue(x interface{}) *Value {
	return &Value{x}
}

// Unwrap returns the carried value, or Unreadable for a nil Value.
func (v *Value) Unwrap() interface{} {
	if v == nil {
		return observe.Unreadable
	}
	return v.X
}

func (v *Value) MarshalJSON() ([]byte, error) {
	if observe.IsUnreadable(v.X) {
		return []byte(`{"unreadable":true}`), nil
	}
	return json.Marshal(&v.X)
}

func (v *Value) UnmarshalJSON(bs []byte) error {
	var x interface{}
	if err := json.Unmarshal(bs, &x); err != nil {
		return err
	}
	if m, is := x.(map[string]interface{}); is && len(m) == 1 {
		if u, have := m["unreadable"]; have && u == true {
			v.X = observe.Unreadable
			return nil
		}
	}
	v.X = x
	return nil
}

// A Snapshotter can enumerate its properties.  observe.Object,
// observe.Struct, and boltstore.Store all can; a Server needs the
// capability to answer snapshot ops and to seed new connections.
type Snapshotter interface {
	Properties() []string
}

// snapshot captures an object's current readable properties.
func snapshot(o observe.Observable) map[string]*Value {
	ss, can := o.(Snapshotter)
	if !can {
		return nil
	}
	props := make(map[string]*Value)
	for _, name := range ss.Properties() {
		v := o.Get(name)
		if observe.IsUnreadable(v) {
			continue
		}
		props[name] = NewValue(v)
	}
	return props
}

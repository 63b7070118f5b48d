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

// Package decl reads, writes, and instantiates binding declarations.
//
// A declaration is a YAML (or JSON) document that names some objects,
// their initial properties, and the bindings among them:
//
//	name: demo
//	objects:
//	  person:
//	    props: {name: "Duke", age: 41}
//	    types: {age: int}
//	  field:
//	    props: {text: ""}
//	bindings:
//	  - name: nameField
//	    source: person
//	    expr: name
//	    target: field
//	    path: text
//	    strategy: read-write
//
// Build turns a Document into live observe.Objects and unbound
// binding.Bindings collected in a fresh binding.Context.  See
// cmd/bindhost for a host that does exactly that.
package decl

import (
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/dave-mccloskey/beansbinding/binding"

	"github.com/jsccast/yaml"
)

// A Document is a parsed declaration.
type Document struct {
	// Name identifies the declaration.  Something like
	// "thermostat-demo".
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is optional Markdown documentation about what this
	// declaration is for.  See package tools for rendering.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Objects maps object names to their declarations.
	Objects map[string]*ObjectDecl `json:"objects,omitempty" yaml:",omitempty"`

	// Bindings declares the bindings among the Objects, in the
	// order they should be added (and therefore bound).
	Bindings []*BindingDecl `json:"bindings,omitempty" yaml:",omitempty"`
}

// An ObjectDecl declares one observable object.
type ObjectDecl struct {
	// Doc is optional Markdown documentation about this object.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Props gives the object's initial properties.
	Props map[string]interface{} `json:"props,omitempty" yaml:",omitempty"`

	// Types optionally declares property types by name: "int",
	// "string", "bool", "float64", and the other basic kinds (see
	// TypeNamed).  Writes to a typed property are converted to the
	// declared type or rejected.  A typed property doesn't need an
	// initial value.
	Types map[string]string `json:"types,omitempty" yaml:",omitempty"`
}

// A BindingDecl declares one binding between two declared objects.
type BindingDecl struct {
	// Name is optional but must be unique within the Document.
	// Validation and synchronization reports mention it, and
	// World.Binding finds the built Binding by it.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is optional Markdown documentation about this binding.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Source names the source object.
	Source string `json:"source,omitempty" yaml:",omitempty"`

	// Expr is the source expression: a bare property path like
	// "address.street", or anything the host's Evaluator accepts.
	// A rich expression cannot take writes, so it needs Strategy
	// "read" or "read-once".
	Expr string `json:"expr,omitempty" yaml:",omitempty"`

	// Target names the target object.
	Target string `json:"target,omitempty" yaml:",omitempty"`

	// Path is the target property path.
	Path string `json:"path,omitempty" yaml:",omitempty"`

	// Strategy is "read-write" (the default when empty), "read",
	// or "read-once".  See ParseStrategy.
	Strategy string `json:"strategy,omitempty" yaml:",omitempty"`

	// Converter optionally names an entry in Converters.
	Converter string `json:"converter,omitempty" yaml:",omitempty"`

	// The four optional substitutes (see Binding's
	// SetNullSourceValue and friends).  The pointer distinguishes
	// an absent substitute from a declared empty one like "".
	// Null is the same as absent.

	NullSource       *interface{} `json:"nullSource,omitempty" yaml:"nullSource,omitempty"`
	NullTarget       *interface{} `json:"nullTarget,omitempty" yaml:"nullTarget,omitempty"`
	IncompleteSource *interface{} `json:"incompleteSource,omitempty" yaml:"incompleteSource,omitempty"`
	IncompleteTarget *interface{} `json:"incompleteTarget,omitempty" yaml:"incompleteTarget,omitempty"`
}

// Parse reads a Document from YAML (or JSON, which is YAML).
//
// Parse does not Validate; Build does.
func Parse(bs []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(bs, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads and parses the declaration in the given file.
func Load(filename string) (*Document, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(bs)
}

// Marshal renders the Document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Validate checks the Document without building anything: type
// names, binding endpoints, strategy and converter names, and name
// uniqueness.  The first problem found is returned, naming the
// offending object or binding.
func (d *Document) Validate() error {
	for _, name := range sortedNames(d.Objects) {
		if name == "" {
			return errors.New("an object has an empty name")
		}
		o := d.Objects[name]
		if o == nil {
			continue
		}
		for _, prop := range sortedProps(o.Types) {
			if _, err := TypeNamed(o.Types[prop]); err != nil {
				return fmt.Errorf("object %q: property %q: %v", name, prop, err)
			}
		}
	}
	names := make(map[string]bool, len(d.Bindings))
	for i, b := range d.Bindings {
		if b == nil {
			return fmt.Errorf("binding %d: empty declaration", i)
		}
		label := b.label(i)
		if b.Name != "" {
			if names[b.Name] {
				return fmt.Errorf("binding %s: duplicate name", label)
			}
			names[b.Name] = true
		}
		if b.Source == "" {
			return fmt.Errorf("binding %s: no source", label)
		}
		if _, have := d.Objects[b.Source]; !have {
			return fmt.Errorf("binding %s: no object named %q", label, b.Source)
		}
		if b.Target == "" {
			return fmt.Errorf("binding %s: no target", label)
		}
		if _, have := d.Objects[b.Target]; !have {
			return fmt.Errorf("binding %s: no object named %q", label, b.Target)
		}
		if b.Expr == "" {
			return fmt.Errorf("binding %s: no expr", label)
		}
		if b.Path == "" {
			return fmt.Errorf("binding %s: no path", label)
		}
		s, err := ParseStrategy(b.Strategy)
		if err != nil {
			return fmt.Errorf("binding %s: %v", label, err)
		}
		if s == binding.ReadWrite && !binding.IsPath(b.Expr) {
			return fmt.Errorf("binding %s: expression %q cannot take writes; use strategy read or read-once", label, b.Expr)
		}
		if b.Converter != "" {
			if _, have := Converters[b.Converter]; !have {
				return fmt.Errorf("binding %s: no converter named %q", label, b.Converter)
			}
		}
	}
	return nil
}

// label identifies a binding in an error message: its name when it
// has one, its index otherwise.
func (b *BindingDecl) label(i int) string {
	if b.Name != "" {
		return fmt.Sprintf("%q", b.Name)
	}
	return fmt.Sprintf("%d", i)
}

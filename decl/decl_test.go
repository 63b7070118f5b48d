package decl

import (
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/dave-mccloskey/beansbinding/binding"
)

var demoYAML = `
name: demo
doc: |
  A person's name mirrored into a text field.
objects:
  person:
    doc: The model.
    props: {name: "Duke", age: 41}
    types: {age: int}
  field:
    props: {text: ""}
bindings:
  - name: nameField
    source: person
    expr: name
    target: field
    path: text
  - name: ageField
    source: person
    expr: age
    target: field
    path: age
    strategy: read
    converter: string
    nullSource: ""
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(demoYAML))
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "demo" {
		t.Fatal(d.Name)
	}
	if len(d.Objects) != 2 {
		t.Fatalf("surprised by %#v", d.Objects)
	}
	if d.Objects["person"].Types["age"] != "int" {
		t.Fatalf("surprised by %#v", d.Objects["person"])
	}
	if len(d.Bindings) != 2 {
		t.Fatalf("surprised by %#v", d.Bindings)
	}
	b := d.Bindings[1]
	if b.Strategy != "read" {
		t.Fatal(b.Strategy)
	}
	if b.Converter != "string" {
		t.Fatal(b.Converter)
	}
	if b.NullSource == nil || *b.NullSource != "" {
		t.Fatalf("surprised by %#v", b.NullSource)
	}
	if b.IncompleteSource != nil {
		t.Fatalf("surprised by %#v", b.IncompleteSource)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	d, err := Parse([]byte(demoYAML))
	if err != nil {
		t.Fatal(err)
	}
	bs, err := d.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(bs)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "demo" || len(again.Bindings) != 2 {
		t.Fatalf("surprised by %s", bs)
	}
	b := again.Bindings[1]
	if b.Converter != "string" {
		t.Fatal(b.Converter)
	}
	// The declared empty substitute must survive the trip.
	if b.NullSource == nil || *b.NullSource != "" {
		t.Fatalf("surprised by %s", bs)
	}
}

func TestLoad(t *testing.T) {
	f, err := ioutil.TempFile("", "decl")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err = f.Write([]byte(demoYAML)); err != nil {
		t.Fatal(err)
	}
	if err = f.Close(); err != nil {
		t.Fatal(err)
	}
	d, err := Load(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "demo" {
		t.Fatal(d.Name)
	}
	if _, err = Load(f.Name() + ".missing"); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestValidate(t *testing.T) {
	good, err := Parse([]byte(demoYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err = good.Validate(); err != nil {
		t.Fatal(err)
	}

	bad := []struct {
		yaml string
		want string
	}{
		{`
objects: {a: {props: {x: 1}}}
bindings: [{name: b, source: nobody, expr: x, target: a, path: x}]
`, `no object named "nobody"`},
		{`
objects: {a: {props: {x: 1}}}
bindings: [{name: b, source: a, expr: x, target: nobody, path: x}]
`, `no object named "nobody"`},
		{`
objects: {a: {props: {x: 1}}}
bindings:
  - {name: b, source: a, expr: x, target: a, path: y}
  - {name: b, source: a, expr: x, target: a, path: z}
`, "duplicate name"},
		{`
objects: {a: {props: {x: 1}}}
bindings: [{name: b, source: a, expr: x, target: a, path: y, strategy: write-only}]
`, `unknown strategy "write-only"`},
		{`
objects: {a: {props: {x: 1}}}
bindings: [{name: b, source: a, expr: x, target: a, path: y, converter: csv}]
`, `no converter named "csv"`},
		{`
objects: {a: {props: {x: 1}}}
bindings: [{name: b, source: a, expr: "x + 1", target: a, path: y}]
`, "cannot take writes"},
		{`
objects: {a: {props: {x: 1}, types: {x: decimal}}}
`, `unknown type "decimal"`},
		{`
objects: {a: {props: {x: 1}}}
bindings: [{name: b, source: a, expr: x, target: a}]
`, "no path"},
		{`
objects: {a: {props: {x: 1}}}
bindings: [{source: a, target: a, path: y}]
`, "binding 0: no expr"},
	}

	for i, c := range bad {
		d, err := Parse([]byte(c.yaml))
		if err != nil {
			t.Fatal(i, err)
		}
		err = d.Validate()
		if err == nil {
			t.Fatalf("%d: didn't protest", i)
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Fatalf(`%d: didn't want "%s"`, i, err.Error())
		}
	}
}

func TestBuild(t *testing.T) {
	d, err := Parse([]byte(demoYAML))
	if err != nil {
		t.Fatal(err)
	}
	w, err := Build(d, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.Name != "demo" {
		t.Fatal(w.Name)
	}

	person := w.Object("person")
	field := w.Object("field")
	if person == nil || field == nil {
		t.Fatal("missing objects")
	}
	if x := person.Get("name"); x != "Duke" {
		t.Fatalf("surprised by %#v", x)
	}
	if x := person.Get("age"); x != 41 {
		t.Fatalf("surprised by %#v", x)
	}
	if b := w.Binding("ageField"); b == nil || b.Strategy() != binding.Read {
		t.Fatalf("surprised by %#v", b)
	}

	if err = w.Bind(); err != nil {
		t.Fatal(err)
	}
	if x := field.Get("text"); x != "Duke" {
		t.Fatalf("surprised by %#v", x)
	}
	if x := field.Get("age"); x != "41" {
		t.Fatalf("surprised by %#v", x)
	}

	// Two-way through nameField.
	if err = field.Set("text", "Earl"); err != nil {
		t.Fatal(err)
	}
	if x := person.Get("name"); x != "Earl" {
		t.Fatalf("surprised by %#v", x)
	}

	// ageField only reads.
	if err = person.Set("age", 42); err != nil {
		t.Fatal(err)
	}
	if x := field.Get("age"); x != "42" {
		t.Fatalf("surprised by %#v", x)
	}
	if err = field.Set("age", "99"); err != nil {
		t.Fatal(err)
	}
	if x := person.Get("age"); x != 42 {
		t.Fatalf("surprised by %#v", x)
	}

	// The declared null substitute skips the converter.
	if err = person.Set("age", nil); err != nil {
		t.Fatal(err)
	}
	if x := field.Get("age"); x != "" {
		t.Fatalf("surprised by %#v", x)
	}

	if err = w.Unbind(); err != nil {
		t.Fatal(err)
	}
	if err = person.Set("name", "Anne"); err != nil {
		t.Fatal(err)
	}
	if x := field.Get("text"); x != "Earl" {
		t.Fatalf("surprised by %#v", x)
	}
}

func TestBuildBadInitialValue(t *testing.T) {
	d, err := Parse([]byte(`
objects:
  person:
    props: {age: carl}
    types: {age: int}
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = Build(d, nil); err == nil {
		t.Fatal("didn't protest")
	} else if !strings.Contains(err.Error(), `object "person"`) {
		t.Fatalf(`didn't want "%s"`, err.Error())
	}
}

func TestStrategyNames(t *testing.T) {
	for _, s := range []binding.Strategy{binding.ReadWrite, binding.Read, binding.ReadOnce} {
		parsed, err := ParseStrategy(StrategyName(s))
		if err != nil {
			t.Fatal(err)
		}
		if parsed != s {
			t.Fatal(s, parsed)
		}
	}
	if s, err := ParseStrategy(""); err != nil || s != binding.ReadWrite {
		t.Fatal(s, err)
	}
	if _, err := ParseStrategy("sometimes"); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestConverterNegate(t *testing.T) {
	c := Converters["negate"]
	v, err := c.SourceToTarget(true)
	if err != nil {
		t.Fatal(err)
	}
	if v != false {
		t.Fatalf("surprised by %#v", v)
	}
	v, err = c.TargetToSource(false)
	if err != nil {
		t.Fatal(err)
	}
	if v != true {
		t.Fatalf("surprised by %#v", v)
	}
	if _, err = c.SourceToTarget("queso"); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestConverterCoercions(t *testing.T) {
	v, err := Converters["string"].SourceToTarget(42)
	if err != nil {
		t.Fatal(err)
	}
	if v != "42" {
		t.Fatalf("surprised by %#v", v)
	}
	if v, err = Converters["int"].SourceToTarget("17"); err != nil || v != int64(17) {
		t.Fatalf("surprised by %#v (%v)", v, err)
	}
	if v, err = Converters["float"].SourceToTarget("2.5"); err != nil || v != 2.5 {
		t.Fatalf("surprised by %#v (%v)", v, err)
	}
	if v, err = Converters["bool"].SourceToTarget("true"); err != nil || v != true {
		t.Fatalf("surprised by %#v (%v)", v, err)
	}
	// The coercions are one-way.
	if _, err = Converters["string"].TargetToSource("42"); err == nil {
		t.Fatal("didn't protest")
	}
}

package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dave-mccloskey/beansbinding/decl"
)

var demoYAML = []byte(`
name: demo
doc: |
  A *person* and a text field.
objects:
  person:
    props: {name: "Duke"}
  field:
    props: {text: ""}
bindings:
  - name: nameField
    source: person
    expr: name
    target: field
    path: text
    strategy: read-write
`)

func demoDoc(t *testing.T) *decl.Document {
	t.Helper()
	d, err := decl.Parse(demoYAML)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRenderDeclHTML(t *testing.T) {
	d := demoDoc(t)

	var buf bytes.Buffer
	if err := RenderDeclHTML(d, &buf); err != nil {
		t.Fatal(err)
	}
	got := buf.String()

	for _, want := range []string{
		"<em>person</em>", // blackfriday ran
		"nameField",
		"Duke",
		`<code>text</code>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("no %q in output:\n%s", want, got)
		}
	}
}

func TestRenderDeclPage(t *testing.T) {
	d := demoDoc(t)

	var buf bytes.Buffer
	if err := RenderDeclPage(d, &buf, nil); err != nil {
		t.Fatal(err)
	}
	got := buf.String()

	for _, want := range []string{
		"<title>demo</title>",
		"decl-html.css",
		"</html>",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("no %q in output:\n%s", want, got)
		}
	}
}

func TestDot(t *testing.T) {
	d := demoDoc(t)

	var buf bytes.Buffer
	if err := Dot(d, &buf); err != nil {
		t.Fatal(err)
	}
	got := buf.String()

	for _, want := range []string{
		"digraph G {",
		"person -> field",
		`dir="both"`,
		"}",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("no %q in output:\n%s", want, got)
		}
	}
}

func TestDotOneWay(t *testing.T) {
	d := demoDoc(t)
	d.Bindings[0].Strategy = "read"
	d.Bindings[0].Converter = "string"

	var buf bytes.Buffer
	if err := Dot(d, &buf); err != nil {
		t.Fatal(err)
	}
	got := buf.String()

	for _, want := range []string{
		`dir="forward"`,
		"via string",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("no %q in output:\n%s", want, got)
		}
	}
}

package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dave-mccloskey/beansbinding/binding"
	"github.com/dave-mccloskey/beansbinding/decl"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given declaration: one node
// per object, with its initial properties in the label, and one edge
// per binding from source to target.
func Dot(d *decl.Document, w io.Writer) error {
	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [rankdir=LR,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled" fillcolor="#99ddc8"]
  edge [fontsize = "12"]
`)

	names := make([]string, 0, len(d.Objects))
	for name := range d.Objects {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		label := name
		if o := d.Objects[name]; o != nil && 0 < len(o.Props) {
			js, err := yaml.Marshal(o.Props)
			if err != nil {
				js = []byte(err.Error())
			}
			props := escapeDot(strings.TrimSpace(string(js)))
			props = strings.Replace(props, "\n", `<BR ALIGN="LEFT"/>`, -1)
			label += `<BR/><FONT POINT-SIZE="8">` + props + `<BR ALIGN="LEFT"/></FONT>`
		}
		fmt.Fprintf(w, "  %s [label=<%s>]\n", name, label)
	}

	for i, b := range d.Bindings {
		if b == nil {
			continue
		}
		label := b.Expr
		if b.Name != "" {
			label = b.Name + ": " + label
		}
		label += " -> " + b.Path
		notes := make([]string, 0, 2)
		if b.Strategy != "" && b.Strategy != "read-write" {
			notes = append(notes, b.Strategy)
		}
		if b.Converter != "" {
			notes = append(notes, "via "+b.Converter)
		}
		if 0 < len(notes) {
			label += " (" + strings.Join(notes, ", ") + ")"
		}

		dir := "both"
		s, err := decl.ParseStrategy(b.Strategy)
		if err != nil {
			return fmt.Errorf("binding %d: %v", i, err)
		}
		switch s {
		case binding.Read, binding.ReadOnce:
			dir = "forward"
		}

		fmt.Fprintf(w, "  %s -> %s [dir=\"%s\", label=\"%s\"]\n",
			b.Source, b.Target, dir, escapeDot(label))
	}

	fmt.Fprintf(w, "}\n")

	return nil
}

func escapeDot(s string) string {
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	s = strings.Replace(s, `"`, `\"`, -1)
	return s
}

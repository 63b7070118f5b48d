// Package tools renders binding declarations as HTML pages and
// Graphviz graphs.
package tools

import (
	"fmt"
	"html"
	"io"
	"io/ioutil"
	"sort"

	"github.com/dave-mccloskey/beansbinding/decl"

	md "github.com/russross/blackfriday/v2"
)

// RenderDeclHTML renders the body of a declaration: its doc, its
// objects, and its bindings.
func RenderDeclHTML(d *decl.Document, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if d.Doc != "" {
		f(`<div class="declDoc doc">%s</div>`, md.Run([]byte(d.Doc)))
	}

	{ // Objects
		f(`<div class="objects"><table>`)
		names := make([]string, 0, len(d.Objects))
		for name := range d.Objects {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			o := d.Objects[name]
			f(`<tr class="object"><td><span id="%s" class="objectName">%s</span></td><td>`, name, name)
			if o != nil {
				if o.Doc != "" {
					f(`<div class="objectDoc doc">%s</div>`, md.Run([]byte(o.Doc)))
				}
				props := make([]string, 0, len(o.Props))
				for prop := range o.Props {
					props = append(props, prop)
				}
				sort.Strings(props)
				if 0 < len(props) {
					f(`<table class="props">`)
					for _, prop := range props {
						typed := ""
						if t, have := o.Types[prop]; have {
							typed = ` <span class="propType">` + html.EscapeString(t) + `</span>`
						}
						f(`<tr><td><code>%s</code>%s</td><td><code>%s</code></td></tr>`,
							html.EscapeString(prop), typed, html.EscapeString(fmt.Sprintf("%v", o.Props[prop])))
					}
					f(`</table>`)
				}
			}
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	{ // Bindings
		f(`<div class="bindings"><table>`)
		for i, b := range d.Bindings {
			if b == nil {
				continue
			}
			label := b.Name
			if label == "" {
				label = fmt.Sprintf("%d", i)
			}
			f(`<tr class="binding"><td><span class="bindingName">%s</span></td><td>`, html.EscapeString(label))
			if b.Doc != "" {
				f(`<div class="bindingDoc doc">%s</div>`, md.Run([]byte(b.Doc)))
			}
			f(`<table>`)
			f(`<tr><td>source</td><td><a href="#%s"><code>%s</code></a></td></tr>`, b.Source, html.EscapeString(b.Source))
			f(`<tr><td>expr</td><td><code>%s</code></td></tr>`, html.EscapeString(b.Expr))
			f(`<tr><td>target</td><td><a href="#%s"><code>%s</code></a></td></tr>`, b.Target, html.EscapeString(b.Target))
			f(`<tr><td>path</td><td><code>%s</code></td></tr>`, html.EscapeString(b.Path))
			if b.Strategy != "" {
				f(`<tr><td>strategy</td><td><code>%s</code></td></tr>`, html.EscapeString(b.Strategy))
			}
			if b.Converter != "" {
				f(`<tr><td>converter</td><td><code>%s</code></td></tr>`, html.EscapeString(b.Converter))
			}
			f(`</table>`)
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	return nil
}

// RenderDeclPage wraps RenderDeclHTML in a full page.
func RenderDeclPage(d *decl.Document, out io.Writer, cssFiles []string) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/decl-html.css"}
	}

	title := d.Name
	if title == "" {
		title = "bindings"
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(title))

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(title))

	if err := RenderDeclHTML(d, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderDeclPage reads a declaration file, validates it, and
// renders it as a page.
func ReadAndRenderDeclPage(filename string, cssFiles []string, out io.Writer) error {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}
	d, err := decl.Parse(bs)
	if err != nil {
		return err
	}
	if err = d.Validate(); err != nil {
		return err
	}
	return RenderDeclPage(d, out, cssFiles)
}

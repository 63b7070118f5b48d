// bindtool converts and renders binding declaration files.
//
// Usage:
//
//	bindtool yamltojson [-p] < bindings.yaml
//	bindtool jsontoyaml < bindings.json
//	bindtool html [-css URL] < bindings.yaml > bindings.html
//	bindtool dot < bindings.yaml | dot -Tpng > bindings.png
//	bindtool check < bindings.yaml
//
// check validates the declaration and builds it against the noop
// evaluator, so rich expressions are reported rather than evaluated.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/dave-mccloskey/beansbinding/decl"
	"github.com/dave-mccloskey/beansbinding/evaluators/noop"
	"github.com/dave-mccloskey/beansbinding/tools"

	"github.com/jsccast/yaml"
)

// DefaultDeclYAML is what you get on empty input.  Handy for kicking
// the tires.
var DefaultDeclYAML = `
name: demo
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
`

func main() {
	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	protest := func(err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	read := func() []byte {
		bs, err := ioutil.ReadAll(os.Stdin)
		protest(err)
		if len(bs) == 0 {
			bs = []byte(DefaultDeclYAML)
		}
		return bs
	}

	parse := func(bs []byte) *decl.Document {
		d, err := decl.Parse(bs)
		protest(err)
		return d
	}

	switch os.Args[1] {
	case "yamltojson":
		pretty := false
		switch len(os.Args) {
		case 2:
		case 3:
			switch os.Args[2] {
			case "-p":
				pretty = true
			default:
				protest(fmt.Errorf("unsupported args: %v", os.Args[1:]))
			}
		default:
			protest(fmt.Errorf("unsupported args: %v", os.Args[1:]))
		}

		d := parse(read())

		var bs []byte
		var err error
		if pretty {
			bs, err = json.MarshalIndent(&d, "  ", "  ")
		} else {
			bs, err = json.Marshal(&d)
		}
		protest(err)

		_, err = os.Stdout.Write(bs)
		protest(err)

	case "jsontoyaml":
		bs := read()

		var d *decl.Document
		protest(json.Unmarshal(bs, &d))

		bs, err := yaml.Marshal(&d)
		protest(err)

		_, err = os.Stdout.Write(bs)
		protest(err)

	case "html":
		fs := flag.NewFlagSet("html", flag.ExitOnError)
		css := fs.String("css", "", "CSS URL for the page")
		fs.Parse(os.Args[2:])

		d := parse(read())
		protest(d.Validate())

		var cssFiles []string
		if *css != "" {
			cssFiles = []string{*css}
		}
		protest(tools.RenderDeclPage(d, os.Stdout, cssFiles))

	case "dot":
		d := parse(read())
		protest(d.Validate())
		protest(tools.Dot(d, os.Stdout))

	case "check":
		d := parse(read())
		protest(d.Validate())
		_, err := decl.Build(d, noop.NewEvaluator())
		protest(err)
		fmt.Printf("%d objects, %d bindings: okay\n", len(d.Objects), len(d.Bindings))

	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand %q\n", os.Args[1])
		Usage()
		os.Exit(1)
	}
}

func Usage() {
	fmt.Printf(`bindtool subcommands:

  yamltojson [-p]  convert a YAML declaration on stdin to JSON
  jsontoyaml       the other direction
  html [-css URL]  render an HTML page for the declaration
  dot              render a Graphviz graph for the declaration
  check            validate and build the declaration

All subcommands read stdin and write stdout.
`)
}

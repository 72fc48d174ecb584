// Command genwrappers writes the per content type collection accessors of the
// commonsense package.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"text/template"

	"github.com/s0up4200/csapi/commonsense"
)

var tmpl = template.Must(template.New("wrappers").Parse(`// Code generated by genwrappers; DO NOT EDIT.

package commonsense
{{range .}}
// {{.Method}} returns the {{.Name}} collection.
func (c *Client) {{.Method}}() *Collection {
	return c.Collection({{.Const}})
}
{{end}}`))

type wrapper struct {
	Name   string
	Method string
	Const  string
}

func main() {
	out := flag.String("out", "collections_gen.go", "output file")
	flag.Parse()

	var wrappers []wrapper
	for _, t := range commonsense.AllContentTypes() {
		wrappers = append(wrappers, wrapper{
			Name:   t.String(),
			Method: t.MethodName(),
			Const:  t.MethodName(),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, wrappers); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, src, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

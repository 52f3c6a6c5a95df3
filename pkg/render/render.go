package render

import (
	_ "embed"
	"strings"
	"text/template"

	errs "github.com/nickclare/texman/pkg/errors"
)

// DocumentTemplate is the name of the compiled document template.
const DocumentTemplate = "document"

//go:embed templates/document.tex.tmpl
var documentSource string

// funcs are the helpers available to the document template.
var funcs = template.FuncMap{
	"join": strings.Join,
}

// Templates holds the compiled document template. It is immutable after
// construction and safe for concurrent use.
type Templates struct {
	tmpl *template.Template
}

// New compiles the embedded document template.
func New() (*Templates, error) {
	return Parse(documentSource)
}

// MustNew is like New but panics if the embedded template does not parse.
func MustNew() *Templates {
	t, err := New()
	if err != nil {
		panic(err)
	}
	return t
}

// Parse compiles src as the document template.
func Parse(src string) (*Templates, error) {
	tmpl, err := template.New(DocumentTemplate).
		Delims("<<", ">>").
		Option("missingkey=error").
		Funcs(funcs).
		Parse(src)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "parse %s template", DocumentTemplate)
	}
	return &Templates{tmpl: tmpl}, nil
}

// Render executes the document template against ctx.
func (t *Templates) Render(ctx *Context) (string, error) {
	var b strings.Builder
	if err := t.tmpl.Execute(&b, ctx.Data()); err != nil {
		return "", errs.Wrap(errs.ErrCodeInternal, err, "render %s template", DocumentTemplate)
	}
	return b.String(), nil
}

package workspace

import (
	"path/filepath"

	"github.com/nickclare/texman/pkg/config"
	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/render"
)

// Document metadata defaults.
const DefaultDocumentClass = "article"

// DefaultIncludes is the default for both prelude_includes and sections.
var DefaultIncludes = []string{"main.tex"}

// documentAliases lists alternate spellings accepted in document metadata.
var documentAliases = config.Aliases{
	"document-class": "document_class",
}

// DocumentMeta is the per-document metadata read from docs/<key>/metadata.*.
type DocumentMeta struct {
	DocumentClass   string
	DocumentOptions []string
	PreludeIncludes []string // file names under prelude/, in inclusion order
	Sections        []string // file names under docs/<key>/, in inclusion order
}

// DefaultDocumentMeta returns the metadata of an empty metadata file.
func DefaultDocumentMeta() DocumentMeta {
	return DocumentMeta{
		DocumentClass:   DefaultDocumentClass,
		DocumentOptions: []string{},
		PreludeIncludes: append([]string{}, DefaultIncludes...),
		Sections:        append([]string{}, DefaultIncludes...),
	}
}

// FromTable implements config.Loadable.
func (m *DocumentMeta) FromTable(t *config.Table) error {
	if err := t.ApplyAliases(documentAliases); err != nil {
		return err
	}

	var err error
	if m.DocumentClass, err = t.String("document_class", DefaultDocumentClass); err != nil {
		return err
	}
	if m.DocumentOptions, err = t.Strings("document_options", nil); err != nil {
		return err
	}
	if m.PreludeIncludes, err = t.Strings("prelude_includes", DefaultIncludes); err != nil {
		return err
	}
	if m.Sections, err = t.Strings("sections", DefaultIncludes); err != nil {
		return err
	}

	for _, list := range [][]string{m.PreludeIncludes, m.Sections} {
		for _, name := range list {
			if err := errs.ValidateIncludePath(name); err != nil {
				return errs.NotValid(t.Path(), err, "invalid document metadata")
			}
		}
	}
	return nil
}

// Document is a view of one document in a workspace. It is only obtainable
// from [Workspace.Document].
type Document struct {
	ws       *Workspace
	key      string
	meta     DocumentMeta
	metaPath string
	unknown  []string
}

// Document loads the document with the given key from docs/<key>/.
func (w *Workspace) Document(key string) (*Document, error) {
	if err := errs.ValidateDocumentKey(key); err != nil {
		return nil, err
	}

	dir := filepath.Join(w.DocsDir(), key)
	if _, err := canonicalDir(dir, "document not found"); err != nil {
		return nil, err
	}

	path, err := config.Find(dir, MetadataName)
	if err != nil {
		return nil, err
	}
	table, err := config.Read(path)
	if err != nil {
		return nil, err
	}
	var meta DocumentMeta
	if err := meta.FromTable(table); err != nil {
		return nil, err
	}

	return &Document{
		ws:       w,
		key:      key,
		meta:     meta,
		metaPath: path,
		unknown:  table.Unused(),
	}, nil
}

// Key returns the document key.
func (d *Document) Key() string { return d.key }

// Workspace returns the owning workspace.
func (d *Document) Workspace() *Workspace { return d.ws }

// Meta returns the document metadata.
func (d *Document) Meta() DocumentMeta { return d.meta }

// MetadataPath returns the metadata file the document was loaded from.
func (d *Document) MetadataPath() string { return d.metaPath }

// UnknownFields returns metadata keys that texman does not recognise.
func (d *Document) UnknownFields() []string { return d.unknown }

// Dir returns <root>/docs/<key>.
func (d *Document) Dir() string { return filepath.Join(d.ws.DocsDir(), d.key) }

// Context builds the rendering context. Both the prelude directory and the
// document directory must exist; either one missing is a NOT_FOUND error.
func (d *Document) Context() (*render.Context, error) {
	preludeDir, err := canonicalDir(d.ws.PreludeDir(), "prelude directory not found")
	if err != nil {
		return nil, err
	}
	docDir, err := canonicalDir(d.Dir(), "document directory not found")
	if err != nil {
		return nil, err
	}

	engine := d.ws.meta.EngineName()

	ctx := render.NewContext()
	ctx.Insert("document_key", d.key)
	ctx.Insert("workspace", map[string]any{"engine": engine})
	ctx.Insert("engine", engine)
	ctx.Insert("document_class", d.meta.DocumentClass)
	ctx.Insert("document_options", append([]string{}, d.meta.DocumentOptions...))
	ctx.Insert("prelude_root", render.DirPath(preludeDir))
	ctx.Insert("prelude_includes", append([]string{}, d.meta.PreludeIncludes...))
	ctx.Insert("document_root", render.DirPath(docDir))
	ctx.Insert("sections", append([]string{}, d.meta.Sections...))
	return ctx, nil
}

// Generate renders the document's LaTeX source. Given the same workspace
// metadata, document metadata and directories, the output is byte-identical.
func (d *Document) Generate() (string, error) {
	if d.ws.templates == nil {
		return "", errs.New(errs.ErrCodeInternal, "workspace opened without templates")
	}
	ctx, err := d.Context()
	if err != nil {
		return "", err
	}
	return d.ws.templates.Render(ctx)
}

// OutputPath returns the absolute path of docs/<key>/output.pdf. The
// document directory must exist.
func (d *Document) OutputPath() (string, error) {
	dir, err := canonicalDir(d.Dir(), "document directory not found")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, OutputName), nil
}

// Package workspace models a texman workspace and the documents it contains.
//
// A workspace is a directory tree rooted at a marker file:
//
//	<root>/workspace.toml           marker + workspace metadata
//	<root>/prelude/                 shared include files
//	<root>/docs/<key>/metadata.toml per-document metadata
//	<root>/docs/<key>/output.pdf    build target
//
// [Resolve] finds the root by walking upward from any directory inside the
// tree, so a command run from docs/<key>/ works without being told where the
// root is. The walk never descends: a marker nested below the start point
// (for example under docs/) is never considered.
//
// Documents are loaded on demand by [Workspace.Document] and never cached;
// every call re-reads docs/<key>/metadata.*.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nickclare/texman/pkg/config"
	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/render"
)

// Fixed layout names.
const (
	MarkerName   = "workspace" // marker file base name (workspace.toml, workspace.yaml, ...)
	MetadataName = "metadata"  // document metadata base name
	PreludeDir   = "prelude"
	DocsDir      = "docs"
	OutputName   = "output.pdf"
)

// Engine identifies a typesetting engine.
type Engine string

// Supported engines.
const (
	EnginePdflatex Engine = "pdflatex"
	EngineXelatex  Engine = "xelatex"
	EngineLualatex Engine = "lualatex"
)

// Engines lists the supported engines.
var Engines = []Engine{EnginePdflatex, EngineXelatex, EngineLualatex}

// ParseEngine parses an engine name case-insensitively, so both "xelatex"
// and "Xelatex" are accepted.
func ParseEngine(s string) (Engine, error) {
	name := Engine(strings.ToLower(strings.TrimSpace(s)))
	for _, e := range Engines {
		if e == name {
			return e, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown engine %q (must be one of pdflatex, xelatex, lualatex)", s)
}

// String returns the engine's binary name.
func (e Engine) String() string { return string(e) }

// Metadata is the workspace-level metadata read from the marker file.
type Metadata struct {
	// Engine is the configured engine, or nil to use the compiler default.
	Engine *Engine
}

// FromTable implements config.Loadable.
func (m *Metadata) FromTable(t *config.Table) error {
	name, err := t.String("engine", "")
	if err != nil {
		return err
	}
	m.Engine = nil
	if !t.Has("engine") {
		return nil
	}
	e, err := ParseEngine(name)
	if err != nil {
		return errs.NotValid(t.Path(), err, "invalid workspace metadata")
	}
	m.Engine = &e
	return nil
}

// EngineName returns the configured engine name, or "" when unset.
func (m Metadata) EngineName() string {
	if m.Engine == nil {
		return ""
	}
	return m.Engine.String()
}

// Workspace is a resolved workspace. It is read-only after construction.
type Workspace struct {
	root       string
	markerPath string
	meta       Metadata
	templates  *render.Templates
}

// Resolve finds the workspace containing start by checking start and then
// each of its ancestors for a marker file. It fails with NOT_FOUND when the
// filesystem root is reached without finding one, or when a directory on the
// way no longer exists. A malformed marker stops the search with NOT_VALID.
func Resolve(start string, templates *render.Templates) (*Workspace, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "resolve start directory %s", start)
	}

	dir := abs
	for {
		if _, err := os.Stat(dir); err != nil {
			return nil, errs.FromFS(err, dir, "workspace search directory vanished")
		}
		if config.Exists(dir, MarkerName) {
			return Open(dir, templates)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, errs.NotFound(abs, "no %s%s found in this directory or any parent", MarkerName, config.Extensions[0])
		}
		dir = parent
	}
}

// Open loads the workspace rooted at root. The root must directly contain
// a marker file.
func Open(root string, templates *render.Templates) (*Workspace, error) {
	resolved, err := canonicalDir(root, "workspace root not found")
	if err != nil {
		return nil, err
	}

	marker, err := config.Find(resolved, MarkerName)
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := config.Load(marker, &meta); err != nil {
		return nil, err
	}

	return &Workspace{
		root:       resolved,
		markerPath: marker,
		meta:       meta,
		templates:  templates,
	}, nil
}

// Root returns the absolute, symlink-resolved workspace root.
func (w *Workspace) Root() string { return w.root }

// MarkerPath returns the path of the marker file the workspace was loaded from.
func (w *Workspace) MarkerPath() string { return w.markerPath }

// Metadata returns the workspace metadata.
func (w *Workspace) Metadata() Metadata { return w.meta }

// WithEngine returns a copy of w whose metadata selects e. It is used to
// layer environment and command-line overrides over workspace.toml.
func (w *Workspace) WithEngine(e Engine) *Workspace {
	cp := *w
	cp.meta.Engine = &e
	return &cp
}

// PreludeDir returns <root>/prelude.
func (w *Workspace) PreludeDir() string { return filepath.Join(w.root, PreludeDir) }

// DocsDir returns <root>/docs.
func (w *Workspace) DocsDir() string { return filepath.Join(w.root, DocsDir) }

// Documents returns the keys of all directories under docs/ that contain a
// metadata file, sorted. A workspace without a docs/ directory has none.
func (w *Workspace) Documents() ([]string, error) {
	entries, err := os.ReadDir(w.DocsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.FromFS(err, w.DocsDir(), "list documents")
	}

	var keys []string
	for _, e := range entries {
		if !e.IsDir() || errs.ValidateDocumentKey(e.Name()) != nil {
			continue
		}
		if config.Exists(filepath.Join(w.DocsDir(), e.Name()), MetadataName) {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// KeyFor returns the key of the document whose directory contains dir, if
// dir lies inside docs/<key>/.
func (w *Workspace) KeyFor(dir string) (string, bool) {
	resolved, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	if r, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = r
	}

	rel, err := filepath.Rel(w.DocsDir(), resolved)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	key := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	if errs.ValidateDocumentKey(key) != nil {
		return "", false
	}
	return key, true
}

// canonicalDir resolves dir to an absolute, symlink-free path and checks
// that it is a directory.
func canonicalDir(dir, missing string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeIO, err, "resolve %s", dir)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errs.FromFS(err, abs, "%s", missing)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", errs.FromFS(err, resolved, "%s", missing)
	}
	if !info.IsDir() {
		return "", errs.NotFound(resolved, "%s (not a directory)", missing)
	}
	return resolved, nil
}

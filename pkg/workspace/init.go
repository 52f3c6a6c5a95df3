package workspace

import (
	"os"
	"path/filepath"

	"github.com/nickclare/texman/pkg/config"
	errs "github.com/nickclare/texman/pkg/errors"
)

// InitOptions configures [Init].
type InitOptions struct {
	// InPlace marks the target as the current directory rather than a
	// newly named one; it only changes which error a non-empty target reports.
	InPlace bool

	// Engine is written to workspace.toml when set.
	Engine Engine

	// Document, when set, scaffolds docs/<Document>/ with default metadata.
	Document string
}

type markerFile struct {
	Engine string `toml:"engine,omitempty"`
}

type metadataFile struct {
	DocumentClass   string   `toml:"document_class"`
	DocumentOptions []string `toml:"document_options,omitempty"`
	PreludeIncludes []string `toml:"prelude_includes"`
	Sections        []string `toml:"sections"`
}

const preludeStub = `% Shared preamble, included by every document in this workspace.
\usepackage{graphicx}
`

const sectionStub = `\section{Introduction}

Write here.
`

// Init scaffolds a new workspace at target. The target may be missing or
// an empty directory; anything else is refused so existing files are never
// overwritten.
func Init(target string, opts InitOptions) error {
	if opts.Document != "" {
		if err := errs.ValidateDocumentKey(opts.Document); err != nil {
			return err
		}
	}

	empty, err := isEmptyDir(target)
	if err != nil {
		return err
	}
	if !empty {
		if opts.InPlace {
			return errs.New(errs.ErrCodeNotEmpty, "the current directory is not empty")
		}
		e := errs.New(errs.ErrCodeAlreadyExists, "the target directory already exists and is not empty")
		e.Path = target
		return e
	}

	for _, dir := range []string{target, filepath.Join(target, PreludeDir), filepath.Join(target, DocsDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.FromFS(err, dir, "create directory")
		}
	}

	if err := config.WriteTOML(filepath.Join(target, MarkerName+".toml"), markerFile{Engine: opts.Engine.String()}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(target, PreludeDir, DefaultIncludes[0]), preludeStub); err != nil {
		return err
	}

	if opts.Document == "" {
		return nil
	}
	docDir := filepath.Join(target, DocsDir, opts.Document)
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return errs.FromFS(err, docDir, "create directory")
	}
	meta := DefaultDocumentMeta()
	if err := config.WriteTOML(filepath.Join(docDir, MetadataName+".toml"), metadataFile{
		DocumentClass:   meta.DocumentClass,
		DocumentOptions: meta.DocumentOptions,
		PreludeIncludes: meta.PreludeIncludes,
		Sections:        meta.Sections,
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(docDir, DefaultIncludes[0]), sectionStub)
}

// isEmptyDir reports whether dir is missing or an empty directory.
func isEmptyDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, errs.FromFS(err, dir, "inspect target directory")
	}
	if !info.IsDir() {
		return false, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, errs.FromFS(err, dir, "inspect target directory")
	}
	return len(entries) == 0, nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errs.FromFS(err, path, "write file")
	}
	return nil
}

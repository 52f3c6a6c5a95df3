package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/render"
)

func TestInitScaffoldsBuildableWorkspace(t *testing.T) {
	target := filepath.Join(t.TempDir(), "thesis")

	if err := Init(target, InitOptions{Engine: EngineXelatex, Document: "chapter1"}); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	for _, rel := range []string{"workspace.toml", "prelude/main.tex", "docs/chapter1/metadata.toml", "docs/chapter1/main.tex"} {
		if _, err := os.Stat(filepath.Join(target, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	ws, err := Resolve(filepath.Join(target, "docs", "chapter1"), render.MustNew())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got := ws.Metadata().EngineName(); got != "xelatex" {
		t.Errorf("engine = %q, want xelatex", got)
	}
	doc, err := ws.Document("chapter1")
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}
	src, err := doc.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(src, `\documentclass{article}`) {
		t.Errorf("unexpected generated source:\n%s", src)
	}
}

func TestInitWithoutEngineOrDocument(t *testing.T) {
	target := t.TempDir()

	if err := Init(target, InitOptions{InPlace: true}); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	ws, err := Open(target, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Metadata().Engine != nil {
		t.Errorf("engine = %v, want unset", *ws.Metadata().Engine)
	}
	keys, err := ws.Documents()
	if err != nil || len(keys) != 0 {
		t.Errorf("Documents() = %v, %v; want none", keys, err)
	}
}

func TestInitRefusesNonEmptyTarget(t *testing.T) {
	tests := []struct {
		name    string
		inPlace bool
		want    errs.Code
	}{
		{"current directory", true, errs.ErrCodeNotEmpty},
		{"named directory", false, errs.ErrCodeAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := t.TempDir()
			mkfile(t, target, "notes.txt", "keep me")

			err := Init(target, InitOptions{InPlace: tt.inPlace})
			if !errs.Is(err, tt.want) {
				t.Fatalf("Init() error = %v, want %s", err, tt.want)
			}
			if _, err := os.Stat(filepath.Join(target, "workspace.toml")); !os.IsNotExist(err) {
				t.Error("Init() must not write into a non-empty directory")
			}
		})
	}
}

func TestInitRejectsBadDocumentKey(t *testing.T) {
	err := Init(t.TempDir(), InitOptions{Document: "../escape"})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Fatalf("Init() error = %v, want INVALID_INPUT", err)
	}
}

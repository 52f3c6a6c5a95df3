package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nickclare/texman/pkg/build"
	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/observability"
	"github.com/nickclare/texman/pkg/render"
	"github.com/nickclare/texman/pkg/workspace"
)

// pdfCompiler writes a fixed one-page PDF as the artifact.
type pdfCompiler struct {
	pdf   []byte
	err   error
	calls int
}

func (c *pdfCompiler) Compile(ctx context.Context, job build.Job) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	out := filepath.Join(job.Dir, "main.pdf")
	return out, os.WriteFile(out, c.pdf, 0o644)
}

func newTestServer(t *testing.T, c build.Compiler) (*Server, *workspace.Workspace) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "ws")
	if err := workspace.Init(root, workspace.InitOptions{Engine: workspace.EngineXelatex, Document: "report"}); err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.Resolve(root, render.MustNew())
	if err != nil {
		t.Fatal(err)
	}
	return New(":0", ws, build.NewBuilder(c, nil), nil), ws
}

func minimalPDF(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "build", "testdata", "minimal.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) Response {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Code    string          `json:"code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return Response{Success: raw.Success, Error: raw.Error, Code: raw.Code}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &pdfCompiler{})
	w := do(t, s, http.MethodGet, "/health")

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var h Health
	if err := json.NewDecoder(w.Body).Decode(&h); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if h.Status != "healthy" || h.Version == "" {
		t.Errorf("expected healthy response with a version, got %+v", h)
	}
}

func TestListDocuments(t *testing.T) {
	s, ws := newTestServer(t, &pdfCompiler{})
	if err := os.MkdirAll(filepath.Join(ws.DocsDir(), "notes"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws.DocsDir(), "notes", "metadata.yaml"), []byte("sections: [a.tex]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := do(t, s, http.MethodGet, "/documents")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var list DocumentList
	resp := decode(t, w, &list)
	if !resp.Success {
		t.Fatal("expected success=true")
	}
	want := DocumentList{Root: ws.Root(), Engine: "xelatex", Documents: []string{"notes", "report"}}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("document list mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceEndpoint(t *testing.T) {
	s, ws := newTestServer(t, &pdfCompiler{})
	doc, err := ws.Document("report")
	if err != nil {
		t.Fatal(err)
	}
	want, err := doc.Generate()
	if err != nil {
		t.Fatal(err)
	}

	w := do(t, s, http.MethodGet, "/documents/report/source")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/x-tex") {
		t.Errorf("Content-Type = %q, want text/x-tex", ct)
	}
	if diff := cmp.Diff(want, w.Body.String()); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceReflectsMetadataEdits(t *testing.T) {
	s, ws := newTestServer(t, &pdfCompiler{})
	meta := filepath.Join(ws.DocsDir(), "report", "metadata.toml")
	if err := os.WriteFile(meta, []byte(`document-class = "book"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := do(t, s, http.MethodGet, "/documents/report/source")
	if !strings.Contains(w.Body.String(), `\documentclass{book}`) {
		t.Errorf("edited metadata not picked up:\n%s", w.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	s, ws := newTestServer(t, &pdfCompiler{})
	bad := filepath.Join(ws.DocsDir(), "broken")
	if err := os.MkdirAll(bad, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bad, "metadata.toml"), []byte("sections = [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		status int
		code   errs.Code
	}{
		{"unknown document", "/documents/missing/source", http.StatusNotFound, errs.ErrCodeNotFound},
		{"hidden key", "/documents/.secret/source", http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"malformed metadata", "/documents/broken/source", http.StatusBadRequest, errs.ErrCodeNotValid},
		{"not built yet", "/documents/report/output.pdf", http.StatusNotFound, errs.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.path)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			resp := decode(t, w, nil)
			if resp.Success || resp.Code != string(tt.code) || resp.Error == "" {
				t.Errorf("response = %+v, want code %s", resp, tt.code)
			}
		})
	}
}

func TestBuildThenServeOutput(t *testing.T) {
	pdf := minimalPDF(t)
	c := &pdfCompiler{pdf: pdf}
	s, _ := newTestServer(t, c)

	w := do(t, s, http.MethodPost, "/documents/report/build")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var res BuildResponse
	if resp := decode(t, w, &res); !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if res.Document != "report" || res.Pages != 1 || res.ID == "" {
		t.Errorf("build response = %+v", res)
	}
	if c.calls != 1 {
		t.Errorf("compiler calls = %d, want 1", c.calls)
	}

	w = do(t, s, http.MethodGet, "/documents/report/output.pdf")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if w.Body.String() != string(pdf) {
		t.Error("served output differs from the built artifact")
	}
}

func TestBuildFailureIsUnprocessable(t *testing.T) {
	s, _ := newTestServer(t, &pdfCompiler{err: errs.New(errs.ErrCodeCompile, "! Undefined control sequence.")})

	w := do(t, s, http.MethodPost, "/documents/report/build")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w, nil)
	if !strings.Contains(resp.Error, "Undefined control sequence") {
		t.Errorf("error = %q, want the engine diagnostic", resp.Error)
	}
}

func TestBuildStatus(t *testing.T) {
	rec := NewStatusRecorder()
	observability.SetBuildHooks(rec)
	t.Cleanup(observability.Reset)

	c := &pdfCompiler{err: errs.New(errs.ErrCodeCompile, "! Emergency stop.")}
	s, _ := newTestServer(t, c)
	s.WithStatus(rec)

	if w := do(t, s, http.MethodGet, "/documents/report/status"); w.Code != http.StatusNotFound {
		t.Fatalf("status before any build: got %d, want 404", w.Code)
	}

	do(t, s, http.MethodPost, "/documents/report/build")
	var st BuildStatus
	w := do(t, s, http.MethodGet, "/documents/report/status")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &st)
	if st.State != StateFailed || !strings.Contains(st.Error, "Emergency stop") {
		t.Errorf("status after failed build = %+v", st)
	}

	c.err, c.pdf = nil, minimalPDF(t)
	do(t, s, http.MethodPost, "/documents/report/build")
	st = BuildStatus{}
	decode(t, do(t, s, http.MethodGet, "/documents/report/status"), &st)
	if st.State != StateSucceeded || st.Pages != 1 || st.Error != "" {
		t.Errorf("status after successful build = %+v", st)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errs.New(errs.ErrCodeNotValid, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeCompile, "x"), http.StatusUnprocessableEntity},
		{errs.New(errs.ErrCodeIO, "x"), http.StatusInternalServerError},
		{errs.New(errs.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/nickclare/texman/pkg/build"
	"github.com/nickclare/texman/pkg/buildinfo"
	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/workspace"
)

// DocumentList is the payload of GET /documents.
type DocumentList struct {
	Root      string   `json:"root"`
	Engine    string   `json:"engine,omitempty"`
	Documents []string `json:"documents"`
}

// BuildResponse is the payload of a successful POST /documents/{key}/build.
type BuildResponse struct {
	ID       string `json:"id"`
	Document string `json:"document"`
	Output   string `json:"output"`
	Pages    int    `json:"pages"`
	Duration int64  `json:"duration_ms"`
}

// Health is the payload of GET /health.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Health{Status: "healthy", Version: buildinfo.String()})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	keys, err := s.ws.Documents()
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	s.Success(w, http.StatusOK, DocumentList{
		Root:      s.ws.Root(),
		Engine:    s.ws.Metadata().EngineName(),
		Documents: keys,
	})
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	src, err := doc.Generate()
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/x-tex; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(src))
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	res, err := s.builder.Build(r.Context(), doc, build.Options{})
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	s.logger.Info("built", "doc", res.Document, "pages", res.Pages, "duration", res.Duration)
	s.Success(w, http.StatusOK, BuildResponse{
		ID:       res.BuildID,
		Document: res.Document,
		Output:   res.Output,
		Pages:    res.Pages,
		Duration: res.Duration.Milliseconds(),
	})
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	path, err := doc.OutputPath()
	if err != nil {
		s.Fail(w, r, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		s.Fail(w, r, errs.FromFS(err, "", "%s has not been built", doc.Key()))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.Fail(w, r, errs.FromFS(err, path, "stat output"))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeContent(w, r, workspace.OutputName, info.ModTime(), f)
}

// document loads the document named in the URL, re-reading its metadata.
func (s *Server) document(r *http.Request) (*workspace.Document, error) {
	return s.ws.Document(chi.URLParam(r, "key"))
}

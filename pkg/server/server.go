// Package server exposes a workspace over HTTP for local previewing.
//
// Routes:
//
//	GET  /health                        liveness probe and version
//	GET  /documents                     document keys in the workspace
//	GET  /documents/{key}/source        generated LaTeX for a document
//	POST /documents/{key}/build         compile a document
//	GET  /documents/{key}/output.pdf    the last successful artifact
//	GET  /documents/{key}/status        last build state (see [Server.WithStatus])
//
// Metadata is re-read on every request, so edits show up without a restart.
// Builds go through a shared [build.Builder] and therefore run one at a time.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nickclare/texman/pkg/build"
	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/workspace"
)

// Server serves one workspace.
type Server struct {
	Addr string

	ws      *workspace.Workspace
	builder *build.Builder
	logger  *log.Logger
	router  *chi.Mux
	server  *http.Server
	status  *StatusRecorder
}

// New creates a Server. A nil logger discards output.
func New(addr string, ws *workspace.Workspace, builder *build.Builder, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		Addr:    addr,
		ws:      ws,
		builder: builder,
		logger:  logger,
		router:  chi.NewRouter(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/documents", func(r chi.Router) {
		r.Get("/", s.handleListDocuments)
		r.Get("/{key}/source", s.handleSource)
		r.Post("/{key}/build", s.handleBuild)
		r.Get("/{key}/"+workspace.OutputName, s.handleOutput)
		r.Get("/{key}/status", s.handleStatus)
	})
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving workspace", "addr", s.Addr, "root", s.ws.Root())
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errs.Wrap(errs.ErrCodeIO, err, "listen on %s", s.Addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown", "err", err)
		}
		return ctx.Err()
	}
}

// requestLogger logs each request through the server's logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Response is the JSON envelope for every non-file response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Success writes a success response.
func (s *Server) Success(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

// Fail writes err as an error response with the status its code maps to.
func (s *Server) Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   errs.UserMessage(err),
		Code:    string(errs.GetCode(err)),
	})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeNotValid, errs.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errs.ErrCodeCompile:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/observability"
)

// BuildStatus is the last known build state of a document.
type BuildStatus struct {
	Document  string    `json:"document"`
	BuildID   string    `json:"build_id"`
	State     string    `json:"state"` // "running", "succeeded" or "failed"
	Pages     int       `json:"pages,omitempty"`
	Duration  int64     `json:"duration_ms,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Build states.
const (
	StateRunning   = "running"
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
)

// StatusRecorder keeps the latest BuildStatus per document. It implements
// observability.BuildHooks, so it sees builds from every Builder once
// registered with observability.SetBuildHooks.
type StatusRecorder struct {
	observability.NoopBuildHooks

	mu       sync.RWMutex
	statuses map[string]BuildStatus
}

// NewStatusRecorder creates an empty recorder.
func NewStatusRecorder() *StatusRecorder {
	return &StatusRecorder{statuses: make(map[string]BuildStatus)}
}

// OnBuildStart implements observability.BuildHooks.
func (r *StatusRecorder) OnBuildStart(_ context.Context, doc, buildID string) {
	r.set(BuildStatus{Document: doc, BuildID: buildID, State: StateRunning})
}

// OnBuildComplete implements observability.BuildHooks.
func (r *StatusRecorder) OnBuildComplete(_ context.Context, doc, buildID string, pages int, duration time.Duration, err error) {
	st := BuildStatus{
		Document: doc,
		BuildID:  buildID,
		State:    StateSucceeded,
		Pages:    pages,
		Duration: duration.Milliseconds(),
	}
	if err != nil {
		st.State = StateFailed
		st.Error = errs.UserMessage(err)
	}
	r.set(st)
}

func (r *StatusRecorder) set(st BuildStatus) {
	st.UpdatedAt = time.Now().UTC()
	r.mu.Lock()
	r.statuses[st.Document] = st
	r.mu.Unlock()
}

// Get returns the status of doc, if it has been built since startup.
func (r *StatusRecorder) Get(doc string) (BuildStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.statuses[doc]
	return st, ok
}

// WithStatus enables GET /documents/{key}/status backed by r.
func (s *Server) WithStatus(r *StatusRecorder) *Server {
	s.status = r
	return s
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		s.Fail(w, r, err)
		return
	}
	if s.status == nil {
		s.Fail(w, r, errs.New(errs.ErrCodeNotFound, "build status is not recorded"))
		return
	}
	st, ok := s.status.Get(doc.Key())
	if !ok {
		s.Fail(w, r, errs.New(errs.ErrCodeNotFound, "%s has not been built since the server started", chi.URLParam(r, "key")))
		return
	}
	s.Success(w, http.StatusOK, st)
}

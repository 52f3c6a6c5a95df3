package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingHooks struct {
	NoopBuildHooks
	started []string
}

func (r *recordingHooks) OnBuildStart(_ context.Context, doc, _ string) {
	r.started = append(r.started, doc)
}

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()
	h := NoopBuildHooks{}
	h.OnBuildStart(ctx, "report", "id")
	h.OnCompileComplete(ctx, "report", "xelatex", time.Second, errors.New("failed"))
	h.OnBuildComplete(ctx, "report", "id", 0, time.Second, nil)
}

func TestBuildHooksRegistry(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Fatal("Build() should return NoopBuildHooks by default")
	}

	rec := &recordingHooks{}
	SetBuildHooks(rec)
	Build().OnBuildStart(context.Background(), "report", "id")
	if len(rec.started) != 1 || rec.started[0] != "report" {
		t.Errorf("registered hooks not called: %v", rec.started)
	}

	SetBuildHooks(nil)
	if Build() != BuildHooks(rec) {
		t.Error("SetBuildHooks(nil) must keep the registered hooks")
	}

	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset() should restore NoopBuildHooks")
	}
}

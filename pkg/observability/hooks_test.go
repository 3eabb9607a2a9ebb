package observability

import (
	"context"
	"testing"
	"time"
)

type recordingEngineHooks struct {
	NoopEngineHooks
	refreshes int
	mutations []string
}

func (r *recordingEngineHooks) OnRefreshStart(context.Context, string) { r.refreshes++ }

func (r *recordingEngineHooks) OnMutation(_ context.Context, _ string, operation string, _ error) {
	r.mutations = append(r.mutations, operation)
}

func TestDefaultHooksAreNoops(t *testing.T) {
	Reset()

	// Must not panic.
	ctx := context.Background()
	Engine().OnRefreshStart(ctx, "p")
	Engine().OnRefreshComplete(ctx, "p", 1, 2, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "layout")
	Store().OnQuery(ctx, "project_services", time.Millisecond, nil)
}

func TestSetEngineHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingEngineHooks{}
	SetEngineHooks(rec)

	Engine().OnRefreshStart(context.Background(), "p")
	Engine().OnMutation(context.Background(), "p", "create", nil)

	if rec.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", rec.refreshes)
	}
	if len(rec.mutations) != 1 || rec.mutations[0] != "create" {
		t.Errorf("mutations = %v", rec.mutations)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingEngineHooks{}
	SetEngineHooks(rec)
	SetEngineHooks(nil)

	Engine().OnRefreshStart(context.Background(), "p")
	if rec.refreshes != 1 {
		t.Error("nil registration must not replace hooks")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	rec := &recordingEngineHooks{}
	SetEngineHooks(rec)
	Reset()

	Engine().OnRefreshStart(context.Background(), "p")
	if rec.refreshes != 0 {
		t.Error("Reset did not restore the no-op hooks")
	}
}

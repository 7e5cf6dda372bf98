package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/setflow/internal/session"
	"github.com/claude/setflow/internal/storage"
)

// TestLocalDataSource verifies the in-process source checks the plan exists
// before touching its session.
func TestLocalDataSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setflow.db")
	if err := storage.RunLocalMigrations(path); err != nil {
		t.Fatal(err)
	}
	store, err := storage.OpenLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	plan := testPlans()[0]
	plan.CreatedAt = time.Now().UTC()
	plan.UpdatedAt = plan.CreatedAt
	if err := store.SavePlan(context.Background(), plan); err != nil {
		t.Fatal(err)
	}

	sched := &session.ManualScheduler{}
	sessions := session.NewManager(store, sched, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer sessions.Close()
	l := &Local{Store: store, Sessions: sessions}
	ctx := context.Background()

	if _, err := l.ControlSession(ctx, "missing", session.ActionPause); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("pause on missing plan err = %v, want ErrNotFound", err)
	}
	if _, err := l.SessionState(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("state of missing plan err = %v, want ErrNotFound", err)
	}

	snap, err := l.ControlSession(ctx, "p1", session.ActionStart)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Phase != session.PhaseResting || !sched.Active() {
		t.Errorf("after start phase = %v active = %v", snap.Phase, sched.Active())
	}
	sched.Fire()
	snap, err = l.SessionState(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if snap.DelayLeft != 9 {
		t.Errorf("delay left = %d, want 9", snap.DelayLeft)
	}
}

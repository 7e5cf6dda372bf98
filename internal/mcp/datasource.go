package mcp

import (
	"context"
	"fmt"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/session"
	"github.com/claude/setflow/internal/storage"
)

// DataSource abstracts plan and session access for MCP tools. Local serves
// from the store and session manager in this process; HTTPClient forwards to
// a running setflow server.
type DataSource interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	SessionState(ctx context.Context, planID string) (session.Snapshot, error)
	ControlSession(ctx context.Context, planID string, action session.Action) (session.Snapshot, error)
}

// Local implements DataSource in-process.
type Local struct {
	Store    storage.Store
	Sessions *session.Manager
}

var (
	_ DataSource = (*Local)(nil)
	_ DataSource = (*HTTPClient)(nil)
)

func (l *Local) ListPlans(ctx context.Context) ([]models.Plan, error) {
	return l.Store.ListPlans(ctx)
}

func (l *Local) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	return l.Store.GetPlan(ctx, id)
}

// SessionState returns the plan's session; the plan must exist.
func (l *Local) SessionState(ctx context.Context, planID string) (session.Snapshot, error) {
	if _, err := l.Store.GetPlan(ctx, planID); err != nil {
		return session.Snapshot{}, fmt.Errorf("loading plan %s: %w", planID, err)
	}
	return l.Sessions.Snapshot(planID), nil
}

func (l *Local) ControlSession(ctx context.Context, planID string, action session.Action) (session.Snapshot, error) {
	if action != session.ActionStart {
		// Start loads the plan itself; the others only need it to exist.
		if _, err := l.Store.GetPlan(ctx, planID); err != nil {
			return session.Snapshot{}, fmt.Errorf("loading plan %s: %w", planID, err)
		}
	}
	return l.Sessions.Control(ctx, planID, action)
}

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/setflow/internal/models"
)

// recordTimeout bounds the store write made when a run completes.
const recordTimeout = 5 * time.Second

// PlanSource is the slice of the plan store a Manager needs: the exercise
// sequence going in and completed records coming back.
type PlanSource interface {
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	AppendHistory(ctx context.Context, planID string, rec models.HistoryRecord) error
}

// Manager keeps one Runner per plan and appends completed runs to the
// plan's history.
type Manager struct {
	mu       sync.Mutex
	runners  map[string]*Runner
	plans    PlanSource
	sched    Scheduler
	interval time.Duration
	log      *slog.Logger
	opts     []Option
}

// NewManager creates a Manager. A nil scheduler means real-time tickers.
func NewManager(plans PlanSource, sched Scheduler, interval time.Duration, log *slog.Logger, opts ...Option) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		runners:  make(map[string]*Runner),
		plans:    plans,
		sched:    sched,
		interval: interval,
		log:      log,
		opts:     opts,
	}
}

// Start loads the plan's current exercises and begins a run over them.
// A plan with no exercises stays idle.
func (m *Manager) Start(ctx context.Context, planID string) (Snapshot, error) {
	plan, err := m.plans.GetPlan(ctx, planID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading plan %s: %w", planID, err)
	}
	return m.runner(planID).Start(plan.Exercises), nil
}

// Pause pauses the plan's run, if any.
func (m *Manager) Pause(planID string) Snapshot {
	return m.runner(planID).Pause()
}

// Resume resumes the plan's run, if paused.
func (m *Manager) Resume(planID string) Snapshot {
	return m.runner(planID).Resume()
}

// Reset abandons the plan's run.
func (m *Manager) Reset(planID string) Snapshot {
	m.mu.Lock()
	r, ok := m.runners[planID]
	m.mu.Unlock()
	if !ok {
		return NewEngine().Snapshot()
	}
	return r.Reset()
}

// Snapshot returns the plan's session state; idle if it never ran.
func (m *Manager) Snapshot(planID string) Snapshot {
	m.mu.Lock()
	r, ok := m.runners[planID]
	m.mu.Unlock()
	if !ok {
		return NewEngine().Snapshot()
	}
	return r.Snapshot()
}

// Forget stops and drops the plan's runner, used when a plan is deleted.
func (m *Manager) Forget(planID string) {
	m.mu.Lock()
	r, ok := m.runners[planID]
	delete(m.runners, planID)
	m.mu.Unlock()
	if ok {
		r.Close()
	}
}

// Close releases every runner's timer.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runners {
		r.Close()
	}
}

func (m *Manager) runner(planID string) *Runner {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.runners[planID]; ok {
		return r
	}
	r := NewRunner(m.sched, m.interval, m.recorder(planID), m.log.With("plan_id", planID), m.opts...)
	m.runners[planID] = r
	return r
}

func (m *Manager) recorder(planID string) func(models.HistoryRecord) {
	return func(rec models.HistoryRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := m.plans.AppendHistory(ctx, planID, rec); err != nil {
			m.log.Error("failed to record workout", "plan_id", planID, "error", err)
		}
	}
}

// Package tui renders a plan's countdown in the terminal. The session
// runner is driven by the program's own tick messages instead of a
// background ticker, so every state change happens inside Update.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/session"
)

const recordTimeout = 5 * time.Second

// Recorder persists completed workouts.
type Recorder interface {
	AppendHistory(ctx context.Context, planID string, rec models.HistoryRecord) error
}

type tickMsg time.Time

type startMsg struct{}

type recordedMsg struct {
	rec models.HistoryRecord
	err error
}

// Model is the bubbletea model for a single plan's countdown.
type Model struct {
	plan     models.Plan
	store    Recorder
	runner   *session.Runner
	sched    *session.ManualScheduler
	interval time.Duration
	finished *[]models.HistoryRecord
	snap     session.Snapshot
	bar      progress.Model
	width    int
	last     *models.HistoryRecord
	saved    bool
	err      error
}

// NewModel creates a Model for plan. store may be nil, in which case
// completed runs are shown but not saved.
func NewModel(plan models.Plan, store Recorder, interval time.Duration, log *slog.Logger) Model {
	if interval <= 0 {
		interval = session.DefaultInterval
	}
	sched := &session.ManualScheduler{}
	finished := &[]models.HistoryRecord{}
	runner := session.NewRunner(sched, interval, func(rec models.HistoryRecord) {
		*finished = append(*finished, rec)
	}, log)

	return Model{
		plan:     plan,
		store:    store,
		runner:   runner,
		sched:    sched,
		interval: interval,
		finished: finished,
		snap:     runner.Snapshot(),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
	}
}

// Err returns the error from the last history write, if any.
func (m Model) Err() error {
	return m.err
}

// Close releases the runner's tick subscription.
func (m Model) Close() {
	m.runner.Close()
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(m.interval),
		func() tea.Msg { return startMsg{} },
	)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.runner.Close()
		return m, tea.Quit

	case " ", "p":
		switch m.snap.Phase {
		case session.PhasePaused:
			m.snap = m.runner.Resume()
		case session.PhaseResting, session.PhaseExercising:
			m.snap = m.runner.Pause()
		}

	case "r":
		m.snap = m.runner.Reset()

	case "s", "enter":
		m = m.start()
	}

	return m, nil
}

func (m Model) start() Model {
	m.last = nil
	m.saved = false
	m.err = nil
	m.snap = m.runner.Start(m.plan.Exercises)
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(min(msg.Width-8, 60), 10)

	case startMsg:
		m = m.start()

	case tickMsg:
		m.sched.Fire()
		m.snap = m.runner.Snapshot()
		for _, rec := range *m.finished {
			last := rec
			m.last = &last
			cmds = append(cmds, m.record(rec))
		}
		*m.finished = (*m.finished)[:0]
		cmds = append(cmds, tick(m.interval))

	case recordedMsg:
		m.err = msg.err
		m.saved = msg.err == nil && m.store != nil
	}

	return m, tea.Batch(cmds...)
}

// record writes rec to the plan's history off the update loop.
func (m Model) record(rec models.HistoryRecord) tea.Cmd {
	store, planID := m.store, m.plan.ID
	return func() tea.Msg {
		if store == nil {
			return recordedMsg{rec: rec}
		}
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		return recordedMsg{rec: rec, err: store.AppendHistory(ctx, planID, rec)}
	}
}

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/claude/setflow/internal/models"
)

// Run shows the countdown for plan until the user quits. Completed runs are
// appended to the plan's history through store.
func Run(ctx context.Context, plan models.Plan, store Recorder, interval time.Duration, log *slog.Logger) error {
	m := NewModel(plan, store, interval, log)
	defer m.Close()

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("running countdown: %w", err)
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fmt.Errorf("recording workout: %w", fm.Err())
	}
	return nil
}

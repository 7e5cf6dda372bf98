package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/storage"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// resolvePlan finds a plan by ID, falling back to a case-insensitive name match.
func resolvePlan(ctx context.Context, store storage.Store, ref string) (*models.Plan, error) {
	p, err := store.GetPlan(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	plans, err := store.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	var matches []models.Plan
	for _, p := range plans {
		if strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", storage.ErrNotFound, ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%d plans are named %q, use the plan ID", len(matches), ref)
	}
}

// resolveExercise finds an exercise by ID or by its 1-based position.
func resolveExercise(p *models.Plan, ref string) (int, error) {
	if i := p.FindExercise(ref); i >= 0 {
		return i, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(p.Exercises) {
		return n - 1, nil
	}
	return -1, fmt.Errorf("exercise %q not found in plan %q", ref, p.Name)
}

// position parses a 1-based position argument.
func position(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("position %q must be between 1 and %d", arg, n)
	}
	return i - 1, nil
}

// savePlan stamps the plan and writes it back.
func savePlan(ctx context.Context, store storage.Store, p *models.Plan) error {
	p.UpdatedAt = time.Now().UTC()
	if err := store.SavePlan(ctx, *p); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

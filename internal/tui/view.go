package tui

import (
	"fmt"
	"strings"

	"github.com/claude/setflow/internal/session"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.plan.Name))
	b.WriteString("\n")
	b.WriteString(statusBoxStyle.Render(m.renderStatus()))
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderStatus() string {
	var lines []string
	phase := m.snap.Phase
	lines = append(lines, labelStyle.Render("Phase: ")+phaseStyle(phase).Render(strings.ToUpper(phase.String())))

	switch {
	case m.snap.Current != nil:
		lines = append(lines, m.renderRun()...)

	case phase == session.PhaseCompleted:
		lines = append(lines, m.renderDone()...)

	case len(m.plan.Exercises) == 0:
		lines = append(lines, labelStyle.Render("This plan has no exercises."))

	default:
		lines = append(lines,
			row("Exercises", fmt.Sprint(len(m.plan.Exercises))),
			row("Total", session.FormatDuration(m.plan.TotalTime())),
		)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRun() []string {
	cur := m.snap.Current
	label := "Exercise"
	if m.snap.IsResting {
		label = "Rest before"
	}

	lines := []string{
		clockStyle.Render(session.FormatClock(m.snap.CurrentTime)),
		m.bar.ViewAs(m.snap.Progress / 100),
		row(label, fmt.Sprintf("%s (%d/%d)", cur.Name, m.snap.CurrentIndex+1, m.snap.ExerciseCount)),
	}
	if m.snap.Next != nil {
		lines = append(lines, row("Next", m.snap.Next.Name))
	} else {
		lines = append(lines, row("Next", "last exercise"))
	}
	return lines
}

func (m Model) renderDone() []string {
	if m.last == nil {
		return nil
	}
	lines := []string{
		row("Duration", session.FormatDuration(m.last.Duration)),
		row("Exercises", fmt.Sprint(m.last.ExerciseCount)),
	}
	switch {
	case m.err != nil:
		lines = append(lines, errorStyle.Render("Not saved: "+m.err.Error()))
	case m.saved:
		lines = append(lines, labelStyle.Render("Saved to history."))
	}
	return lines
}

func (m Model) renderHelp() string {
	hints := []struct{ key, desc string }{
		{"space", "pause/resume"},
		{"r", "reset"},
		{"s", "start"},
		{"q", "quit"},
	}
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyHintStyle.Render(h.key) + " " + labelStyle.Render(h.desc)
	}
	return strings.Join(parts, "  ")
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-12s", label+":")) + valueStyle.Render(value)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claude/setflow/internal/session"
	"github.com/claude/setflow/internal/stats"
)

var historyCmd = &cobra.Command{
	Use:   "history <plan>",
	Short: "Show a plan's completed workouts",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var statsCmd = &cobra.Command{
	Use:   "stats [plan]",
	Short: "Show totals across all plans, or one plan's chart data",
	Long: `Without a plan, show totals across all plans. With a plan, show its
workout durations over time and each exercise's share of the exercise time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := resolvePlan(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(p.History) == 0 {
		fmt.Fprintf(out, "No workouts recorded for %q yet.\n", p.Name)
		return nil
	}

	rows := make([][]string, 0, len(p.History))
	for i := len(p.History) - 1; i >= 0; i-- {
		h := p.History[i]
		rows = append(rows, []string{
			formatDate(h.Date),
			session.FormatDuration(h.Duration),
			fmt.Sprint(h.ExerciseCount),
		})
	}
	fmt.Fprintf(out, "%s: %d workouts\n", p.Name, len(p.History))
	fmt.Fprintln(out, renderTable([]string{"Date", "Duration", "Exercises"}, rows))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		p, err := resolvePlan(cmd.Context(), store, args[0])
		if err != nil {
			return err
		}
		printCharts(cmd, p.Name, stats.ForPlan(*p))
		return nil
	}

	plans, err := store.ListPlans(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}
	d := stats.ComputeDashboard(plans)

	last := "never"
	if d.LastWorkout != nil {
		last = formatDate(*d.LastWorkout)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plans:          %d\n", d.TotalPlans)
	fmt.Fprintf(out, "Workouts:       %d\n", d.TotalWorkouts)
	fmt.Fprintf(out, "Exercises:      %d\n", d.TotalExercises)
	fmt.Fprintf(out, "Time trained:   %d min\n", d.TotalDurationMin)
	fmt.Fprintf(out, "Last workout:   %s\n", last)
	return nil
}

func printCharts(cmd *cobra.Command, name string, c stats.Charts) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, name)

	if len(c.History) == 0 {
		fmt.Fprintln(out, "No workouts recorded yet.")
	} else {
		rows := make([][]string, 0, len(c.History))
		for _, h := range c.History {
			rows = append(rows, []string{h.Label, session.FormatDuration(h.Duration), fmt.Sprint(h.Exercises)})
		}
		fmt.Fprintln(out, renderTable([]string{"Day", "Duration", "Exercises"}, rows))
	}

	if len(c.Goals) > 0 {
		rows := make([][]string, 0, len(c.Goals))
		for _, g := range c.Goals {
			rows = append(rows, []string{g.Name, session.FormatClock(g.Duration), fmt.Sprintf("%.0f%%", g.Percent)})
		}
		fmt.Fprintln(out, renderTable([]string{"Exercise", "Duration", "Share"}, rows))
	}
}

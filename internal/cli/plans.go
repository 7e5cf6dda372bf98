package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/session"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List, create, delete and clone plans",
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all plans",
	Args:  cobra.NoArgs,
	RunE:  runPlansList,
}

var plansShowCmd = &cobra.Command{
	Use:   "show <plan>",
	Short: "Show a plan's exercises",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansShow,
}

var plansCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an empty plan",
	Long:  `Create an empty plan. Without a name the plan is called "` + models.DefaultPlanName + `".`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlansCreate,
}

var plansDeleteCmd = &cobra.Command{
	Use:   "delete <plan>",
	Short: "Delete a plan and its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansDelete,
}

var plansCloneCmd = &cobra.Command{
	Use:   "clone <plan>",
	Short: "Copy a plan's exercises into a new plan",
	Long:  `Copy a plan's exercises into a new plan named "<name> (Copy)". The copy starts with no history.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansClone,
}

var plansRenameCmd = &cobra.Command{
	Use:   "rename <plan> <name>",
	Short: "Rename a plan",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlansRename,
}

func init() {
	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansShowCmd)
	plansCmd.AddCommand(plansCreateCmd)
	plansCmd.AddCommand(plansDeleteCmd)
	plansCmd.AddCommand(plansCloneCmd)
	plansCmd.AddCommand(plansRenameCmd)
}

func runPlansList(cmd *cobra.Command, _ []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	plans, err := store.ListPlans(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(plans) == 0 {
		fmt.Fprintln(out, "No plans yet. Create one with: setflowctl plans create <name>")
		return nil
	}

	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			fmt.Sprint(len(p.Exercises)),
			session.FormatDuration(p.TotalTime()),
			fmt.Sprint(len(p.History)),
			formatDate(p.UpdatedAt),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Exercises", "Total", "Workouts", "Updated"}, rows))
	return nil
}

func runPlansShow(cmd *cobra.Command, args []string) error {
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
	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(out, "  Exercise time: %s\n", session.FormatDuration(p.ExerciseTime()))
	fmt.Fprintf(out, "  Total time:    %s\n", session.FormatDuration(p.TotalTime()))
	fmt.Fprintf(out, "  Workouts:      %d\n", len(p.History))
	if len(p.Exercises) == 0 {
		fmt.Fprintln(out, "\nNo exercises.")
		return nil
	}

	rows := make([][]string, 0, len(p.Exercises))
	for i, e := range p.Exercises {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			e.ID,
			e.Name,
			session.FormatClock(e.Duration),
			session.FormatClock(e.Delay),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"#", "ID", "Name", "Duration", "Rest"}, rows))
	return nil
}

func runPlansCreate(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	name := ""
	if len(args) == 1 {
		name = strings.TrimSpace(args[0])
	}
	p := models.NewPlan(name, time.Now().UTC())
	if err := store.SavePlan(cmd.Context(), p); err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created plan %q (%s)\n", p.Name, p.ID)
	return nil
}

func runPlansDelete(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := resolvePlan(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}
	if err := store.DeletePlan(cmd.Context(), p.ID); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %q (%d workouts removed)\n", p.Name, len(p.History))
	return nil
}

func runPlansClone(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := resolvePlan(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}
	c := p.Clone(time.Now().UTC())
	if err := store.SavePlan(cmd.Context(), c); err != nil {
		return fmt.Errorf("failed to clone plan: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created plan %q (%s)\n", c.Name, c.ID)
	return nil
}

func runPlansRename(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[1])
	if name == "" {
		return fmt.Errorf("plan name must not be empty")
	}

	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := resolvePlan(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}
	p.Name = name
	if err := savePlan(cmd.Context(), store, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed plan to %q\n", p.Name)
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/session"
)

// defaultDelay is the rest before a new exercise when --delay is not given.
const defaultDelay = 10

var (
	exerciseDuration float64
	exerciseDelay    float64
	exerciseMinutes  bool
)

var exercisesCmd = &cobra.Command{
	Use:     "exercises",
	Aliases: []string{"ex"},
	Short:   "Add, rename, remove, clone and reorder a plan's exercises",
	Long: `Edit the exercises of a plan.

Exercises are referred to by ID or by their 1-based position as shown by
"setflowctl plans show".`,
}

var exercisesAddCmd = &cobra.Command{
	Use:   "add <plan> <name>",
	Short: "Append an exercise",
	Long: `Append an exercise to a plan.

--duration is in seconds, or minutes with --minutes. --delay is the rest
before the exercise and is always in seconds. Negative values become 0.

Examples:
  setflowctl exercises add Legs Squats --duration 45
  setflowctl exercises add Legs Run --duration 5 --minutes --delay 30`,
	Args: cobra.ExactArgs(2),
	RunE: runExercisesAdd,
}

var exercisesRenameCmd = &cobra.Command{
	Use:   "rename <plan> <exercise> <name>",
	Short: "Rename an exercise",
	Args:  cobra.ExactArgs(3),
	RunE:  runExercisesRename,
}

var exercisesRemoveCmd = &cobra.Command{
	Use:   "remove <plan> <exercise>",
	Short: "Remove an exercise",
	Args:  cobra.ExactArgs(2),
	RunE:  runExercisesRemove,
}

var exercisesCloneCmd = &cobra.Command{
	Use:   "clone <plan> <exercise>",
	Short: "Append a copy of an exercise",
	Args:  cobra.ExactArgs(2),
	RunE:  runExercisesClone,
}

var exercisesMoveCmd = &cobra.Command{
	Use:   "move <plan> <from> <to>",
	Short: "Move an exercise to another position",
	Long: `Move the exercise at position <from> to position <to>. Positions are
1-based; the exercises in between shift by one.`,
	Args: cobra.ExactArgs(3),
	RunE: runExercisesMove,
}

func init() {
	exercisesAddCmd.Flags().Float64VarP(&exerciseDuration, "duration", "d", 0, "Exercise duration in seconds (minutes with --minutes)")
	exercisesAddCmd.Flags().Float64Var(&exerciseDelay, "delay", defaultDelay, "Rest before the exercise in seconds")
	exercisesAddCmd.Flags().BoolVarP(&exerciseMinutes, "minutes", "m", false, "Read --duration as minutes")

	exercisesCmd.AddCommand(exercisesAddCmd)
	exercisesCmd.AddCommand(exercisesRenameCmd)
	exercisesCmd.AddCommand(exercisesRemoveCmd)
	exercisesCmd.AddCommand(exercisesCloneCmd)
	exercisesCmd.AddCommand(exercisesMoveCmd)
}

// editPlan loads the plan named by ref, applies fn and saves the result.
func editPlan(cmd *cobra.Command, ref string, fn func(p *models.Plan) (string, error)) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := resolvePlan(cmd.Context(), store, ref)
	if err != nil {
		return err
	}
	msg, err := fn(p)
	if err != nil {
		return err
	}
	if err := savePlan(cmd.Context(), store, p); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runExercisesAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[1])
	if name == "" {
		return fmt.Errorf("exercise name must not be empty")
	}
	return editPlan(cmd, args[0], func(p *models.Plan) (string, error) {
		e := p.AddExercise(models.Exercise{
			Name:     name,
			Duration: models.SecondsFromInput(exerciseDuration, exerciseMinutes),
			Delay:    models.SecondsFromInput(exerciseDelay, false),
		})
		return fmt.Sprintf("Added %q (%s, rest %s) as #%d",
			e.Name, session.FormatClock(e.Duration), session.FormatClock(e.Delay), len(p.Exercises)), nil
	})
}

func runExercisesRename(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[2])
	if name == "" {
		return fmt.Errorf("exercise name must not be empty")
	}
	return editPlan(cmd, args[0], func(p *models.Plan) (string, error) {
		i, err := resolveExercise(p, args[1])
		if err != nil {
			return "", err
		}
		old := p.Exercises[i].Name
		p.Exercises[i].Name = name
		return fmt.Sprintf("Renamed %q to %q", old, name), nil
	})
}

func runExercisesRemove(cmd *cobra.Command, args []string) error {
	return editPlan(cmd, args[0], func(p *models.Plan) (string, error) {
		i, err := resolveExercise(p, args[1])
		if err != nil {
			return "", err
		}
		name := p.Exercises[i].Name
		if err := p.RemoveExercise(i); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed %q", name), nil
	})
}

func runExercisesClone(cmd *cobra.Command, args []string) error {
	return editPlan(cmd, args[0], func(p *models.Plan) (string, error) {
		i, err := resolveExercise(p, args[1])
		if err != nil {
			return "", err
		}
		c, err := p.CloneExercise(i)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Added %q as #%d", c.Name, len(p.Exercises)), nil
	})
}

func runExercisesMove(cmd *cobra.Command, args []string) error {
	return editPlan(cmd, args[0], func(p *models.Plan) (string, error) {
		from, err := position(args[1], len(p.Exercises))
		if err != nil {
			return "", err
		}
		to, err := position(args[2], len(p.Exercises))
		if err != nil {
			return "", err
		}
		name := p.Exercises[from].Name
		if err := p.MoveExercise(from, to); err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved %q to #%d", name, to+1), nil
	})
}

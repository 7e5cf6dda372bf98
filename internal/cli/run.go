package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claude/setflow/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run <plan>",
	Short: "Run a plan's countdown in the terminal",
	Long: `Run a plan's countdown in the terminal. Each exercise starts with its
rest delay, then counts down its duration. A run that reaches the end is
added to the plan's history.

Keys:
  space  pause or resume
  r      reset
  s      start again
  q      quit`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := resolvePlan(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}
	if len(p.Exercises) == 0 {
		return fmt.Errorf("plan %q has no exercises", p.Name)
	}

	return tui.Run(cmd.Context(), *p, store, cfg.Session.TickInterval, newLogger(cmd.ErrOrStderr()))
}

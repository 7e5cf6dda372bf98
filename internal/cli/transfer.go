package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/planfile"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write all plans to a JSON file",
	Long: `Write all plans, with their exercises and history, to a JSON file.
Use "-" to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load plans from a JSON file",
	Long: `Load plans from a JSON file written by "setflowctl export" or by the
browser app's export. Plans with an existing ID are replaced, history
included. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runExport(cmd *cobra.Command, args []string) error {
	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	plans, err := planfile.Export(cmd.Context(), store)
	if err != nil {
		return err
	}

	if args[0] == "-" {
		return planfile.Encode(cmd.OutOrStdout(), plans)
	}
	if err := planfile.WriteFile(args[0], plans); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d plans to %s\n", len(plans), args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	var err error
	var plans []models.Plan
	if args[0] == "-" {
		plans, err = planfile.Decode(cmd.InOrStdin())
	} else {
		plans, err = planfile.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	store, _, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := planfile.Import(cmd.Context(), store, plans)
	if err != nil {
		return fmt.Errorf("imported %d of %d plans: %w", n, len(plans), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d plans\n", n)
	return nil
}

// Package cli implements setflowctl, the operator command line for plans,
// exercises, history and the terminal countdown.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/claude/setflow/internal/config"
	"github.com/claude/setflow/internal/storage"
)

// Version information set from main.
var (
	version = "dev"
	commit  = "unknown"
)

var (
	configPath string
	dbPath     string
	verbose    bool
)

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c string) {
	version = v
	commit = c
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
}

var rootCmd = &cobra.Command{
	Use:   "setflowctl",
	Short: "Manage SetFlow workout plans and run them in the terminal",
	Long: `setflowctl edits workout plans, shows their history and statistics,
moves plans in and out of JSON files and runs a plan's countdown in the
terminal.

Plans are stored in the database named by the config file (SQLite by
default). A plan can be referred to by its ID or by its exact name.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: built-in defaults plus SETFLOW_* env)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides the configured database)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at info level")

	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(exercisesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadConfig resolves the config file and the --db override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = dbPath
	}
	return cfg, nil
}

// openStore loads config and opens the plan store, migrating it first.
func openStore(ctx context.Context) (storage.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, cfg, nil
}

// newLogger writes to stderr so stdout stays clean for command output and
// the MCP stdio transport.
func newLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

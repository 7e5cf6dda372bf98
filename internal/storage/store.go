package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/claude/setflow/internal/config"
	"github.com/claude/setflow/internal/models"
)

// ErrNotFound is returned when a plan does not exist.
var ErrNotFound = errors.New("plan not found")

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Store persists plans, their exercise lists and their run history.
type Store interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	// SavePlan inserts or updates the plan row and replaces its exercises.
	// History is left alone so a concurrent AppendHistory is never lost.
	SavePlan(ctx context.Context, p models.Plan) error
	// ImportPlan writes the plan exactly as given, history included.
	ImportPlan(ctx context.Context, p models.Plan) error
	DeletePlan(ctx context.Context, id string) error
	// AppendHistory adds a record to the end of the plan's history and
	// bumps its updated time.
	AppendHistory(ctx context.Context, planID string, rec models.HistoryRecord) error
	Close() error
}

// Migrate applies pending schema migrations for the configured driver.
func Migrate(cfg config.DatabaseConfig) error {
	switch cfg.Driver {
	case config.DriverPostgres:
		return RunMigrations(cfg.DSN())
	case config.DriverSQLite:
		return RunLocalMigrations(cfg.Path)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open migrates and connects to the configured database.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	if err := Migrate(cfg); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case config.DriverPostgres:
		return New(ctx, cfg.DSN())
	case config.DriverSQLite:
		return OpenLocal(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func migrationsDir(driver string) (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations/"+driver)
}

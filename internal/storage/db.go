package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgxpool.Pool and implements Store on PostgreSQL.
type DB struct {
	Pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// RunMigrations applies all pending PostgreSQL migrations.
func RunMigrations(dsn string) error {
	return runMigrations("postgres", dsn)
}

// RunLocalMigrations applies all pending SQLite migrations to the file at path.
func RunLocalMigrations(path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return runMigrations("sqlite", "sqlite://"+path)
}

func runMigrations(driver, dsn string) error {
	dir, err := migrationsDir(driver)
	if err != nil {
		return fmt.Errorf("opening %s migrations: %w", driver, err)
	}
	src, err := iofs.New(dir, ".")
	if err != nil {
		return fmt.Errorf("loading %s migrations: %w", driver, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

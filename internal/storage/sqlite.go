package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/setflow/internal/models"
	_ "modernc.org/sqlite"
)

// LocalDB implements Store on a single SQLite file.
type LocalDB struct {
	db *sql.DB
}

var _ Store = (*LocalDB)(nil)

// OpenLocal opens (or creates) the SQLite database at path. The schema must
// already be migrated; see RunLocalMigrations.
func OpenLocal(path string) (*LocalDB, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", localDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	return &LocalDB{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database dir %s: %w", dir, err)
	}
	return nil
}

func localDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database.
func (l *LocalDB) Close() error {
	return l.db.Close()
}

// ListPlans returns every plan with exercises and history, oldest first.
func (l *LocalDB) ListPlans(ctx context.Context) ([]models.Plan, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM plans ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	var plans []models.Plan
	for rows.Next() {
		p, err := scanPlanRow(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		plans = append(plans, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range plans {
		if err := l.loadChildren(ctx, &plans[i]); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// GetPlan retrieves a single plan with exercises and history.
func (l *LocalDB) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM plans WHERE id = ?`, id)
	p, err := scanPlanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := l.loadChildren(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePlan upserts the plan and replaces its exercises in one transaction.
func (l *LocalDB) SavePlan(ctx context.Context, p models.Plan) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		return saveLocalPlanTx(ctx, tx, p)
	})
}

// ImportPlan writes the plan, its exercises and its history, replacing any
// existing plan with the same ID.
func (l *LocalDB) ImportPlan(ctx context.Context, p models.Plan) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		if err := saveLocalPlanTx(ctx, tx, p); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM workout_history WHERE plan_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		for i, h := range p.History {
			if err := insertLocalHistory(ctx, tx, p.ID, i, h); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePlan removes a plan together with its exercises and history.
func (l *LocalDB) DeletePlan(ctx context.Context, id string) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		// Child rows are removed explicitly so older files opened without the
		// foreign_keys pragma stay consistent.
		if _, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE plan_id = ?`, id); err != nil {
			return fmt.Errorf("deleting exercises: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM workout_history WHERE plan_id = ?`, id); err != nil {
			return fmt.Errorf("deleting history: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting plan: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AppendHistory records a completed run at the end of the plan's history.
func (l *LocalDB) AppendHistory(ctx context.Context, planID string, rec models.HistoryRecord) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE plans SET updated_at = ? WHERE id = ?`,
			formatTime(time.Now()), planID)
		if err != nil {
			return fmt.Errorf("touching plan: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		var next int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position) + 1, 0) FROM workout_history WHERE plan_id = ?`, planID).Scan(&next); err != nil {
			return fmt.Errorf("reading history position: %w", err)
		}
		return insertLocalHistory(ctx, tx, planID, next, rec)
	})
}

func (l *LocalDB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (l *LocalDB) loadChildren(ctx context.Context, p *models.Plan) error {
	p.Exercises = []models.Exercise{}
	p.History = []models.HistoryRecord{}

	exRows, err := l.db.QueryContext(ctx,
		`SELECT id, name, duration_sec, delay_sec FROM exercises WHERE plan_id = ? ORDER BY position`, p.ID)
	if err != nil {
		return fmt.Errorf("querying exercises: %w", err)
	}
	defer exRows.Close()
	for exRows.Next() {
		var e models.Exercise
		if err := exRows.Scan(&e.ID, &e.Name, &e.Duration, &e.Delay); err != nil {
			return fmt.Errorf("scanning exercise: %w", err)
		}
		p.Exercises = append(p.Exercises, e)
	}
	if err := exRows.Err(); err != nil {
		return err
	}

	hRows, err := l.db.QueryContext(ctx,
		`SELECT id, completed_at, duration_sec, exercise_count FROM workout_history WHERE plan_id = ? ORDER BY position`, p.ID)
	if err != nil {
		return fmt.Errorf("querying history: %w", err)
	}
	defer hRows.Close()
	for hRows.Next() {
		var h models.HistoryRecord
		var completed string
		if err := hRows.Scan(&h.ID, &completed, &h.Duration, &h.ExerciseCount); err != nil {
			return fmt.Errorf("scanning history: %w", err)
		}
		if h.Date, err = parseTime(completed); err != nil {
			return err
		}
		p.History = append(p.History, h)
	}
	return hRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlanRow(row rowScanner) (models.Plan, error) {
	var p models.Plan
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scanning plan: %w", err)
	}
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return p, err
	}
	return p, nil
}

func saveLocalPlanTx(ctx context.Context, tx *sql.Tx, p models.Plan) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO plans (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		p.ID, p.Name, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upserting plan: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE plan_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clearing exercises: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO exercises (plan_id, position, id, name, duration_sec, delay_sec) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing exercise insert: %w", err)
	}
	defer stmt.Close()
	for i, e := range p.Exercises {
		e.Normalize()
		if _, err := stmt.ExecContext(ctx, p.ID, i, e.ID, e.Name, e.Duration, e.Delay); err != nil {
			return fmt.Errorf("inserting exercise %d: %w", i, err)
		}
	}
	return nil
}

func insertLocalHistory(ctx context.Context, tx *sql.Tx, planID string, position int, h models.HistoryRecord) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO workout_history (plan_id, position, id, completed_at, duration_sec, exercise_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		planID, position, h.ID, formatTime(h.Date), h.Duration, h.ExerciseCount)
	if err != nil {
		return fmt.Errorf("inserting history: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

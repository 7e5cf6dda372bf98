package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/setflow/internal/models"
	"github.com/jackc/pgx/v5"
)

// ListPlans returns every plan with exercises and history, oldest first.
func (db *DB) ListPlans(ctx context.Context) ([]models.Plan, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM plans ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	index := map[string]int{}
	for rows.Next() {
		p := models.Plan{Exercises: []models.Exercise{}, History: []models.HistoryRecord{}}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
		index[p.ID] = len(plans)
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exRows, err := db.Pool.Query(ctx,
		`SELECT plan_id, id, name, duration_sec, delay_sec FROM exercises ORDER BY plan_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer exRows.Close()
	for exRows.Next() {
		var planID string
		var e models.Exercise
		if err := exRows.Scan(&planID, &e.ID, &e.Name, &e.Duration, &e.Delay); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		if i, ok := index[planID]; ok {
			plans[i].Exercises = append(plans[i].Exercises, e)
		}
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	hRows, err := db.Pool.Query(ctx,
		`SELECT plan_id, id, completed_at, duration_sec, exercise_count FROM workout_history ORDER BY plan_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer hRows.Close()
	for hRows.Next() {
		var planID string
		var h models.HistoryRecord
		if err := hRows.Scan(&planID, &h.ID, &h.Date, &h.Duration, &h.ExerciseCount); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		h.Date = h.Date.UTC()
		if i, ok := index[planID]; ok {
			plans[i].History = append(plans[i].History, h)
		}
	}
	return plans, hRows.Err()
}

// GetPlan retrieves a single plan with exercises and history.
func (db *DB) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	p := models.Plan{Exercises: []models.Exercise{}, History: []models.HistoryRecord{}}
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM plans WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()

	exRows, err := db.Pool.Query(ctx,
		`SELECT id, name, duration_sec, delay_sec FROM exercises WHERE plan_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer exRows.Close()
	for exRows.Next() {
		var e models.Exercise
		if err := exRows.Scan(&e.ID, &e.Name, &e.Duration, &e.Delay); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		p.Exercises = append(p.Exercises, e)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	hRows, err := db.Pool.Query(ctx,
		`SELECT id, completed_at, duration_sec, exercise_count FROM workout_history WHERE plan_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer hRows.Close()
	for hRows.Next() {
		var h models.HistoryRecord
		if err := hRows.Scan(&h.ID, &h.Date, &h.Duration, &h.ExerciseCount); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		h.Date = h.Date.UTC()
		p.History = append(p.History, h)
	}
	return &p, hRows.Err()
}

// SavePlan upserts the plan and replaces its exercises in one transaction.
func (db *DB) SavePlan(ctx context.Context, p models.Plan) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		return savePlanTx(ctx, tx, p)
	})
}

// ImportPlan writes the plan, its exercises and its history, replacing any
// existing plan with the same ID.
func (db *DB) ImportPlan(ctx context.Context, p models.Plan) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if err := savePlanTx(ctx, tx, p); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM workout_history WHERE plan_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		return insertHistory(ctx, tx, p.ID, 0, p.History)
	})
}

// DeletePlan removes a plan; exercises and history cascade.
func (db *DB) DeletePlan(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendHistory records a completed run at the end of the plan's history.
func (db *DB) AppendHistory(ctx context.Context, planID string, rec models.HistoryRecord) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE plans SET updated_at = $2 WHERE id = $1`, planID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("touching plan: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		var next int
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(position) + 1, 0) FROM workout_history WHERE plan_id = $1`, planID).Scan(&next); err != nil {
			return fmt.Errorf("reading history position: %w", err)
		}
		return insertHistory(ctx, tx, planID, next, []models.HistoryRecord{rec})
	})
}

func savePlanTx(ctx context.Context, tx pgx.Tx, p models.Plan) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO plans (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting plan: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM exercises WHERE plan_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clearing exercises: %w", err)
	}
	if len(p.Exercises) == 0 {
		return nil
	}

	query := `INSERT INTO exercises (plan_id, position, id, name, duration_sec, delay_sec) VALUES `
	args := make([]any, 0, len(p.Exercises)*6)
	valueStrings := make([]string, 0, len(p.Exercises))
	for i, e := range p.Exercises {
		e.Normalize()
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, p.ID, i, e.ID, e.Name, e.Duration, e.Delay)
	}
	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting exercises: %w", err)
	}
	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, planID string, start int, recs []models.HistoryRecord) error {
	if len(recs) == 0 {
		return nil
	}
	query := `INSERT INTO workout_history (plan_id, position, id, completed_at, duration_sec, exercise_count) VALUES `
	args := make([]any, 0, len(recs)*6)
	valueStrings := make([]string, 0, len(recs))
	for i, h := range recs {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, planID, start+i, h.ID, h.Date, h.Duration, h.ExerciseCount)
	}
	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting history: %w", err)
	}
	return nil
}

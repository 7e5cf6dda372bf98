// Package planfile reads and writes plans in their persisted JSON layout: an
// array of plan objects, the same shape the browser client keeps under its
// "exercise-plans" storage key.
package planfile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/claude/setflow/internal/models"
	"github.com/google/uuid"
)

// Store is the subset of storage.Store used by Import and Export.
type Store interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	ImportPlan(ctx context.Context, p models.Plan) error
}

// Decode validates and parses a plan array. Missing IDs are generated, negative durations
// are clamped and nil slices become empty. Duplicate plan IDs are rejected.
func Decode(r io.Reader) ([]models.Plan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading plans: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}

	var plans []models.Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("decoding plans: %w", err)
	}

	seen := make(map[string]bool, len(plans))
	for i := range plans {
		p := &plans[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Name == "" {
			p.Name = models.DefaultPlanName
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		p.Normalize()
		for j := range p.Exercises {
			if p.Exercises[j].ID == "" {
				p.Exercises[j].ID = uuid.NewString()
			}
		}
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	return plans, nil
}

// Encode writes plans as an indented JSON array.
func Encode(w io.Writer, plans []models.Plan) error {
	if plans == nil {
		plans = []models.Plan{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plans); err != nil {
		return fmt.Errorf("encoding plans: %w", err)
	}
	return nil
}

// ReadFile decodes the plan file at path.
func ReadFile(path string) ([]models.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile encodes plans to path, replacing any existing file.
func WriteFile(path string, plans []models.Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Encode(f, plans); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Import writes every plan to the store, replacing plans with matching IDs.
// It returns the number of plans written.
func Import(ctx context.Context, s Store, plans []models.Plan) (int, error) {
	for i, p := range plans {
		if err := s.ImportPlan(ctx, p); err != nil {
			return i, fmt.Errorf("importing plan %q: %w", p.ID, err)
		}
	}
	return len(plans), nil
}

// Export returns every stored plan, history included.
func Export(ctx context.Context, s Store) ([]models.Plan, error) {
	plans, err := s.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	return plans, nil
}

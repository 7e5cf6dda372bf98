package planfile

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/claude/setflow/internal/models"
)

const browserExport = `[
  {
    "id": "1705312200000",
    "name": "Morning HIIT",
    "exercises": [
      {"id": "1705312201000", "name": "Burpees", "duration": 30, "delay": 10},
      {"id": "1705312202000", "name": "Jumping Jacks", "duration": -5, "delay": 5}
    ],
    "history": [
      {"id": "1705398600000", "date": "2024-01-16T10:30:00.000Z", "duration": 50, "exerciseCount": 2}
    ],
    "createdAt": "2024-01-15T10:30:00.000Z",
    "updatedAt": "2024-01-16T10:30:00.000Z"
  }
]`

type memStore struct {
	plans []models.Plan
	fail  string
}

func (m *memStore) ListPlans(context.Context) ([]models.Plan, error) {
	return m.plans, nil
}

func (m *memStore) ImportPlan(_ context.Context, p models.Plan) error {
	if p.ID == m.fail {
		return errors.New("boom")
	}
	m.plans = append(m.plans, p)
	return nil
}

// TestDecodeBrowserExport verifies that a browser export decodes with IDs kept
// and negative durations clamped.
func TestDecodeBrowserExport(t *testing.T) {
	plans, err := Decode(strings.NewReader(browserExport))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("got %d plans, want 1", len(plans))
	}
	p := plans[0]
	if p.ID != "1705312200000" {
		t.Errorf("id = %q, want kept", p.ID)
	}
	if p.Exercises[1].Duration != 0 {
		t.Errorf("negative duration = %d, want 0", p.Exercises[1].Duration)
	}
	if len(p.History) != 1 || p.History[0].ExerciseCount != 2 {
		t.Errorf("history = %+v", p.History)
	}
	want := time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)
	if !p.History[0].Date.Equal(want) {
		t.Errorf("history date = %v, want %v", p.History[0].Date, want)
	}
}

// TestDecodeFillsDefaults verifies missing IDs, names and slices are filled in.
func TestDecodeFillsDefaults(t *testing.T) {
	plans, err := Decode(strings.NewReader(`[{"exercises":[{"name":"Plank","duration":30}]}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := plans[0]
	if p.ID == "" || p.Exercises[0].ID == "" {
		t.Error("expected generated IDs")
	}
	if p.Name != models.DefaultPlanName {
		t.Errorf("name = %q, want %q", p.Name, models.DefaultPlanName)
	}
	if p.History == nil {
		t.Error("history is nil, want empty slice")
	}
}

// TestDecodeRejects verifies malformed input and duplicate IDs are errors.
func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "not json", in: `nope`},
		{name: "object not array", in: `{"id":"a"}`},
		{name: "duplicate id", in: `[{"id":"a"},{"id":"a"}]`},
		{name: "fractional duration", in: `[{"exercises":[{"name":"x","duration":1.5}]}]`},
		{name: "name not string", in: `[{"name":7}]`},
		{name: "history without date", in: `[{"history":[{"id":"h","duration":3}]}]`},
		{name: "negative exercise count", in: `[{"history":[{"date":"2024-01-01T00:00:00Z","exerciseCount":-1}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestEncodeDecodeStable verifies that encoding decoded plans and decoding
// again yields the same plans.
func TestEncodeDecodeStable(t *testing.T) {
	first, err := Decode(strings.NewReader(browserExport))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, first); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if second[0].Name != first[0].Name || len(second[0].Exercises) != 2 {
		t.Errorf("second decode = %+v", second[0])
	}
	if !second[0].CreatedAt.Equal(first[0].CreatedAt) {
		t.Errorf("createdAt = %v, want %v", second[0].CreatedAt, first[0].CreatedAt)
	}
}

// TestEncodeNil verifies that no plans encode as an empty array, not null.
func TestEncodeNil(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("Encode(nil) = %q, want []", got)
	}
}

// TestFileRoundTrip verifies WriteFile and ReadFile agree.
func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.json")
	p := models.NewPlan("Core", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	p.AddExercise(models.Exercise{Name: "Plank", Duration: 60, Delay: 5})

	if err := WriteFile(path, []models.Plan{p}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 1 || got[0].ID != p.ID || got[0].Exercises[0].Name != "Plank" {
		t.Errorf("ReadFile = %+v", got)
	}
}

// TestImportExport verifies plans pass through the store and that an import
// failure reports how many plans were written.
func TestImportExport(t *testing.T) {
	ctx := context.Background()
	plans := []models.Plan{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	s := &memStore{}
	n, err := Import(ctx, s, plans)
	if err != nil || n != 3 {
		t.Fatalf("Import = %d, %v; want 3, nil", n, err)
	}
	out, err := Export(ctx, s)
	if err != nil || len(out) != 3 {
		t.Fatalf("Export = %d plans, %v", len(out), err)
	}

	failing := &memStore{fail: "b"}
	n, err = Import(ctx, failing, plans)
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 1 {
		t.Errorf("written = %d, want 1", n)
	}
}

// TestValidateReportsLocation verifies schema errors point at the bad field.
func TestValidateReportsLocation(t *testing.T) {
	err := Validate([]byte(`[{"exercises":[{"name":"x","delay":"ten"}]}]`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "/0/exercises/0/delay") {
		t.Errorf("error %q does not name the delay field", err)
	}
	if err := Validate([]byte(browserExport)); err != nil {
		t.Errorf("browser export rejected: %v", err)
	}
}

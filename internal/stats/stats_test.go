package stats

import (
	"math"
	"testing"
	"time"

	"github.com/claude/setflow/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 18, 0, 0, 0, time.UTC)
}

// TestComputeDashboard verifies totals and the latest workout across plans.
func TestComputeDashboard(t *testing.T) {
	plans := []models.Plan{
		{
			Exercises: []models.Exercise{{Duration: 30}, {Duration: 45}},
			History: []models.HistoryRecord{
				{Date: day(3), Duration: 90},
				{Date: day(9), Duration: 100},
			},
		},
		{
			Exercises: []models.Exercise{{Duration: 60}},
			History:   []models.HistoryRecord{{Date: day(5), Duration: 70}},
		},
		{},
	}

	d := ComputeDashboard(plans)
	if d.TotalPlans != 3 {
		t.Errorf("TotalPlans = %d, want 3", d.TotalPlans)
	}
	if d.TotalWorkouts != 3 {
		t.Errorf("TotalWorkouts = %d, want 3", d.TotalWorkouts)
	}
	if d.TotalExercises != 3 {
		t.Errorf("TotalExercises = %d, want 3", d.TotalExercises)
	}
	if d.TotalDurationSec != 260 {
		t.Errorf("TotalDurationSec = %d, want 260", d.TotalDurationSec)
	}
	if d.TotalDurationMin != 4 {
		t.Errorf("TotalDurationMin = %d, want 4", d.TotalDurationMin)
	}
	if d.LastWorkout == nil || !d.LastWorkout.Equal(day(9)) {
		t.Errorf("LastWorkout = %v, want %v", d.LastWorkout, day(9))
	}
}

// TestComputeDashboardEmpty verifies that no history means no last workout.
func TestComputeDashboardEmpty(t *testing.T) {
	d := ComputeDashboard(nil)
	if d.LastWorkout != nil {
		t.Errorf("LastWorkout = %v, want nil", d.LastWorkout)
	}
	if d.TotalDurationMin != 0 {
		t.Errorf("TotalDurationMin = %d, want 0", d.TotalDurationMin)
	}
}

// TestHistorySeriesSorted verifies ordering by date and the short label.
func TestHistorySeriesSorted(t *testing.T) {
	history := []models.HistoryRecord{
		{Date: day(12), Duration: 120, ExerciseCount: 4},
		{Date: day(2), Duration: 80, ExerciseCount: 3},
	}
	got := HistorySeries(history)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Label != "Jan 2" || got[1].Label != "Jan 12" {
		t.Errorf("labels = %q, %q; want Jan 2, Jan 12", got[0].Label, got[1].Label)
	}
	if got[0].Exercises != 3 || got[1].Duration != 120 {
		t.Errorf("points = %+v", got)
	}
	// Input is left untouched.
	if !history[0].Date.Equal(day(12)) {
		t.Error("HistorySeries reordered its input")
	}
}

// TestGoalShares verifies percentages sum to 100 and a zero total yields zeros.
func TestGoalShares(t *testing.T) {
	got := GoalShares([]models.Exercise{
		{Name: "A", Duration: 30},
		{Name: "B", Duration: 90},
	})
	if got[0].Percent != 25 || got[1].Percent != 75 {
		t.Errorf("shares = %v, %v; want 25, 75", got[0].Percent, got[1].Percent)
	}

	zero := GoalShares([]models.Exercise{{Name: "A"}, {Name: "B"}})
	for _, s := range zero {
		if s.Percent != 0 || math.IsNaN(s.Percent) {
			t.Errorf("share %q = %v, want 0", s.Name, s.Percent)
		}
	}

	if got := GoalShares(nil); got == nil || len(got) != 0 {
		t.Errorf("GoalShares(nil) = %v, want empty slice", got)
	}
}

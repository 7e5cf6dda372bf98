// Package stats computes dashboard totals and chart series from plans.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/claude/setflow/internal/models"
)

// Dashboard holds aggregate statistics across all plans.
type Dashboard struct {
	TotalPlans       int        `json:"total_plans"`
	TotalWorkouts    int        `json:"total_workouts"`
	TotalExercises   int        `json:"total_exercises"`
	TotalDurationSec int        `json:"total_duration_sec"`
	TotalDurationMin int        `json:"total_duration_min"`
	LastWorkout      *time.Time `json:"last_workout"`
}

// HistoryPoint is one completed run in a plan's history chart.
type HistoryPoint struct {
	Label     string    `json:"label"`
	Date      time.Time `json:"date"`
	Duration  int       `json:"duration"`
	Exercises int       `json:"exercises"`
}

// GoalShare is one exercise's slice of the plan's total exercise time.
type GoalShare struct {
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	Percent  float64 `json:"percent"`
}

// Charts bundles the per-plan chart series.
type Charts struct {
	History []HistoryPoint `json:"history"`
	Goals   []GoalShare    `json:"goals"`
}

// ComputeDashboard totals history and exercises across plans.
func ComputeDashboard(plans []models.Plan) Dashboard {
	d := Dashboard{TotalPlans: len(plans)}
	for _, p := range plans {
		d.TotalWorkouts += len(p.History)
		d.TotalExercises += len(p.Exercises)
		for _, h := range p.History {
			d.TotalDurationSec += h.Duration
			if d.LastWorkout == nil || h.Date.After(*d.LastWorkout) {
				date := h.Date
				d.LastWorkout = &date
			}
		}
	}
	d.TotalDurationMin = int(math.Round(float64(d.TotalDurationSec) / 60))
	return d
}

// HistorySeries returns the history sorted oldest first, labelled "Jan 2".
func HistorySeries(history []models.HistoryRecord) []HistoryPoint {
	sorted := make([]models.HistoryRecord, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]HistoryPoint, 0, len(sorted))
	for _, h := range sorted {
		points = append(points, HistoryPoint{
			Label:     h.Date.Format("Jan 2"),
			Date:      h.Date,
			Duration:  h.Duration,
			Exercises: h.ExerciseCount,
		})
	}
	return points
}

// GoalShares returns each exercise's percentage of the summed durations.
// Every share is 0 when the total is 0.
func GoalShares(exercises []models.Exercise) []GoalShare {
	total := 0
	for _, e := range exercises {
		total += e.Duration
	}
	shares := make([]GoalShare, 0, len(exercises))
	for _, e := range exercises {
		s := GoalShare{Name: e.Name, Duration: e.Duration}
		if total > 0 {
			s.Percent = float64(e.Duration) / float64(total) * 100
		}
		shares = append(shares, s)
	}
	return shares
}

// ForPlan builds both chart series for a plan.
func ForPlan(p models.Plan) Charts {
	return Charts{
		History: HistorySeries(p.History),
		Goals:   GoalShares(p.Exercises),
	}
}

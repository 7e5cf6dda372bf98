package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultPlanName is the name given to a freshly created plan.
const DefaultPlanName = "New Workout Plan"

// Exercise is one timed activity in a plan. Duration and Delay are seconds;
// Delay is the rest period that precedes the exercise.
type Exercise struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	Delay    int    `json:"delay"`
}

// Normalize clamps negative durations to zero.
func (e *Exercise) Normalize() {
	if e.Duration < 0 {
		e.Duration = 0
	}
	if e.Delay < 0 {
		e.Delay = 0
	}
}

// HistoryRecord is an immutable log entry written when a session runs to completion.
type HistoryRecord struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Duration      int       `json:"duration"`
	ExerciseCount int       `json:"exerciseCount"`
}

// Plan is a named workout template with its run history.
type Plan struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Exercises []Exercise      `json:"exercises"`
	History   []HistoryRecord `json:"history"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewPlan returns an empty plan stamped with now.
func NewPlan(name string, now time.Time) Plan {
	if name == "" {
		name = DefaultPlanName
	}
	return Plan{
		ID:        uuid.NewString(),
		Name:      name,
		Exercises: []Exercise{},
		History:   []HistoryRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Normalize fills nil slices and clamps exercise durations so the plan
// serializes with empty arrays instead of null.
func (p *Plan) Normalize() {
	if p.Exercises == nil {
		p.Exercises = []Exercise{}
	}
	if p.History == nil {
		p.History = []HistoryRecord{}
	}
	for i := range p.Exercises {
		p.Exercises[i].Normalize()
	}
}

// Clone copies the plan under a new ID. The copy keeps the exercises but
// starts with an empty history.
func (p Plan) Clone(now time.Time) Plan {
	exercises := make([]Exercise, len(p.Exercises))
	copy(exercises, p.Exercises)
	return Plan{
		ID:        uuid.NewString(),
		Name:      p.Name + " (Copy)",
		Exercises: exercises,
		History:   []HistoryRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ExerciseTime is the sum of exercise durations, excluding rest.
func (p Plan) ExerciseTime() int {
	total := 0
	for _, e := range p.Exercises {
		total += e.Duration
	}
	return total
}

// TotalTime is the sum of durations and delays: the length of one full run.
func (p Plan) TotalTime() int {
	return SequenceDuration(p.Exercises)
}

// SequenceDuration sums duration and delay across the sequence.
func SequenceDuration(seq []Exercise) int {
	total := 0
	for _, e := range seq {
		total += e.Duration + e.Delay
	}
	return total
}

// FindExercise returns the index of the exercise with the given ID, or -1.
func (p Plan) FindExercise(id string) int {
	for i, e := range p.Exercises {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// AddExercise appends an exercise, assigning an ID if it has none.
func (p *Plan) AddExercise(e Exercise) Exercise {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Normalize()
	p.Exercises = append(p.Exercises, e)
	return e
}

// CloneExercise appends a copy of the exercise at index i.
func (p *Plan) CloneExercise(i int) (Exercise, error) {
	if i < 0 || i >= len(p.Exercises) {
		return Exercise{}, fmt.Errorf("exercise index %d out of range", i)
	}
	src := p.Exercises[i]
	c := Exercise{
		ID:       uuid.NewString(),
		Name:     src.Name + " (Copy)",
		Duration: src.Duration,
		Delay:    src.Delay,
	}
	p.Exercises = append(p.Exercises, c)
	return c, nil
}

// RemoveExercise deletes the exercise at index i.
func (p *Plan) RemoveExercise(i int) error {
	if i < 0 || i >= len(p.Exercises) {
		return fmt.Errorf("exercise index %d out of range", i)
	}
	p.Exercises = append(p.Exercises[:i], p.Exercises[i+1:]...)
	return nil
}

// MoveExercise moves the exercise at from to position to, shifting the
// exercises in between.
func (p *Plan) MoveExercise(from, to int) error {
	n := len(p.Exercises)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d -> %d out of range for %d exercises", from, to, n)
	}
	if from == to {
		return nil
	}
	e := p.Exercises[from]
	rest := append(p.Exercises[:from:from], p.Exercises[from+1:]...)
	out := make([]Exercise, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, e)
	out = append(out, rest[to:]...)
	p.Exercises = out
	return nil
}

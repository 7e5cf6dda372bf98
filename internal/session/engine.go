// Package session implements the workout countdown: a tick-driven state
// machine that walks a captured exercise sequence, rest delay first, and
// produces a history record when the sequence runs out.
package session

import (
	"fmt"
	"time"

	"github.com/claude/setflow/internal/models"
	"github.com/google/uuid"
)

// Phase is the engine's externally visible state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResting
	PhaseExercising
	PhasePaused
	PhaseCompleted
)

var phaseNames = [...]string{"idle", "resting", "exercising", "paused", "completed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// State is the raw counter state of an engine.
type State struct {
	CurrentIndex int   `json:"currentIndex"`
	Phase        Phase `json:"phase"`
	TimeLeft     int   `json:"timeLeft"`
	DelayLeft    int   `json:"delayLeft"`
}

// Engine is the countdown state machine. It is not safe for concurrent use;
// Runner serializes access for hosts that tick from a timer goroutine.
//
// Every operation is a silent no-op outside its valid phase.
type Engine struct {
	seq       []models.Exercise
	index     int
	timeLeft  int
	delayLeft int
	running   bool
	paused    bool
	completed bool

	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used to date history records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs sets the generator for history record IDs.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine returns an idle engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Phase derives the current phase from the counters. A non-zero delay means
// the engine is resting; otherwise it is exercising.
func (e *Engine) Phase() Phase {
	switch {
	case e.completed:
		return PhaseCompleted
	case !e.running:
		return PhaseIdle
	case e.paused:
		return PhasePaused
	case e.delayLeft > 0:
		return PhaseResting
	default:
		return PhaseExercising
	}
}

// State returns the counters and derived phase.
func (e *Engine) State() State {
	return State{
		CurrentIndex: e.index,
		Phase:        e.Phase(),
		TimeLeft:     e.timeLeft,
		DelayLeft:    e.delayLeft,
	}
}

// Running reports whether ticks should be delivered: resting or exercising.
func (e *Engine) Running() bool {
	return e.running && !e.paused
}

// Sequence returns a copy of the captured sequence.
func (e *Engine) Sequence() []models.Exercise {
	out := make([]models.Exercise, len(e.seq))
	copy(out, e.seq)
	return out
}

// Start captures a copy of seq and begins at its first exercise. An empty
// sequence leaves the engine untouched. Starting over an active run discards
// it without producing a record.
func (e *Engine) Start(seq []models.Exercise) {
	if len(seq) == 0 {
		return
	}
	e.seq = make([]models.Exercise, len(seq))
	copy(e.seq, seq)
	for i := range e.seq {
		e.seq[i].Normalize()
	}
	e.running = true
	e.paused = false
	e.completed = false
	e.load(0)
}

// Pause freezes the counters. Valid only while resting or exercising.
func (e *Engine) Pause() {
	if e.running && !e.paused {
		e.paused = true
	}
}

// Resume continues a paused run exactly where it stopped.
func (e *Engine) Resume() {
	if e.running && e.paused {
		e.paused = false
	}
}

// Reset returns to idle and zeroes the counters. No record is produced.
func (e *Engine) Reset() {
	e.seq = nil
	e.index = 0
	e.timeLeft = 0
	e.delayLeft = 0
	e.running = false
	e.paused = false
	e.completed = false
}

// Tick advances the countdown by one step: the rest delay first, then the
// exercise time, and once both are spent the next exercise is loaded. Each
// tick performs exactly one of these, so an exercise with no time and no
// delay still takes one tick to pass.
//
// When the last exercise is spent, Tick returns the history record and true.
func (e *Engine) Tick() (models.HistoryRecord, bool) {
	if !e.Running() {
		return models.HistoryRecord{}, false
	}

	switch {
	case e.delayLeft > 0:
		e.delayLeft--
	case e.timeLeft > 0:
		e.timeLeft--
	case e.index+1 < len(e.seq):
		e.load(e.index + 1)
	default:
		return e.complete(), true
	}
	return models.HistoryRecord{}, false
}

func (e *Engine) load(i int) {
	e.index = i
	e.timeLeft = e.seq[i].Duration
	e.delayLeft = e.seq[i].Delay
}

func (e *Engine) complete() models.HistoryRecord {
	rec := models.HistoryRecord{
		ID:            e.newID(),
		Date:          e.now(),
		Duration:      models.SequenceDuration(e.seq),
		ExerciseCount: len(e.seq),
	}
	e.running = false
	e.paused = false
	e.completed = true
	e.index = 0
	e.timeLeft = 0
	e.delayLeft = 0
	return rec
}

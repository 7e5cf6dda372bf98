package session

import (
	"math"

	"github.com/claude/setflow/internal/models"
)

// Snapshot is the read-only view a presentation layer renders from.
type Snapshot struct {
	Phase         Phase            `json:"phase"`
	CurrentIndex  int              `json:"currentIndex"`
	TimeLeft      int              `json:"timeLeft"`
	DelayLeft     int              `json:"delayLeft"`
	CurrentTime   int              `json:"currentTime"`
	IsResting     bool             `json:"isResting"`
	PhaseTotal    int              `json:"phaseTotal"`
	Progress      float64          `json:"progress"`
	Current       *models.Exercise `json:"current,omitempty"`
	Next          *models.Exercise `json:"next,omitempty"`
	ExerciseCount int              `json:"exerciseCount"`
	TotalTime     int              `json:"totalTime"`
}

// Snapshot derives the display values from the engine state. Current and
// Next are only set while a run is active or paused.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Phase:         e.Phase(),
		CurrentIndex:  e.index,
		TimeLeft:      e.timeLeft,
		DelayLeft:     e.delayLeft,
		CurrentTime:   CurrentTime(e.timeLeft, e.delayLeft),
		IsResting:     e.delayLeft > 0,
		ExerciseCount: len(e.seq),
		TotalTime:     models.SequenceDuration(e.seq),
	}

	if e.running && e.index < len(e.seq) {
		cur := e.seq[e.index]
		s.Current = &cur
		if e.index+1 < len(e.seq) {
			next := e.seq[e.index+1]
			s.Next = &next
		}
		if s.IsResting {
			s.PhaseTotal = cur.Delay
		} else {
			s.PhaseTotal = cur.Duration
		}
	}
	s.Progress = Progress(s.CurrentTime, s.PhaseTotal)
	return s
}

// CurrentTime is the countdown value on display: the rest delay while
// resting, the exercise time otherwise.
func CurrentTime(timeLeft, delayLeft int) int {
	if delayLeft > 0 {
		return delayLeft
	}
	return timeLeft
}

// Progress is the elapsed share of a phase as a percentage in [0, 100].
// A zero-length phase reads as complete.
func Progress(remaining, total int) float64 {
	if total <= 0 {
		return 100
	}
	return ClampProgress((1 - float64(remaining)/float64(total)) * 100)
}

// ClampProgress bounds a percentage to [0, 100]. NaN and infinities map to 100.
func ClampProgress(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 100
	}
	return math.Max(0, math.Min(100, p))
}

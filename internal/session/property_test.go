package session

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/claude/setflow/internal/models"
)

func genSequence() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 6)).FlatMap(func(v any) gopter.Gen {
		durations := v.([]int)
		return gen.SliceOfN(len(durations), gen.IntRange(0, 4)).Map(func(delays []int) []models.Exercise {
			out := make([]models.Exercise, len(durations))
			for i := range durations {
				out[i] = models.Exercise{Duration: durations[i], Delay: delays[i]}
			}
			return out
		})
	}, reflect.TypeOf([]models.Exercise(nil)))
}

// runToCompletion ticks until the engine reports a record, bounded by limit.
func runToCompletion(e *Engine, limit int) (models.HistoryRecord, int, bool) {
	for ticks := 1; ticks <= limit; ticks++ {
		if rec, done := e.Tick(); done {
			return rec, ticks, true
		}
	}
	return models.HistoryRecord{}, limit, false
}

// TestCompletionProperty checks that an uninterrupted run of any sequence
// completes after one tick per second of rest and work plus one settle tick
// per exercise, and that the record sums the captured sequence.
func TestCompletionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("run completes with matching record", prop.ForAll(
		func(s []models.Exercise) bool {
			e := NewEngine()
			e.Start(s)
			if len(s) == 0 {
				return e.Phase() == PhaseIdle
			}

			total := models.SequenceDuration(s)
			rec, ticks, ok := runToCompletion(e, total+len(s)+1)
			return ok &&
				ticks == total+len(s) &&
				rec.Duration == total &&
				rec.ExerciseCount == len(s) &&
				e.Phase() == PhaseCompleted &&
				e.State().CurrentIndex == 0
		},
		genSequence(),
	))

	properties.TestingRun(t)
}

// TestPauseResumeProperty checks that pausing at any point and ticking while
// paused neither changes the counters nor the total tick count.
func TestPauseResumeProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("pause is transparent", prop.ForAll(
		func(s []models.Exercise, at, idle int) bool {
			if len(s) == 0 {
				return true
			}
			total := models.SequenceDuration(s) + len(s)
			at %= total

			e := NewEngine()
			e.Start(s)
			for i := 0; i < at; i++ {
				e.Tick()
			}
			before := e.State()
			e.Pause()
			for i := 0; i < idle; i++ {
				if _, done := e.Tick(); done {
					return false
				}
			}
			paused := e.State()
			if paused.Phase != PhasePaused ||
				paused.CurrentIndex != before.CurrentIndex ||
				paused.TimeLeft != before.TimeLeft ||
				paused.DelayLeft != before.DelayLeft {
				return false
			}
			e.Resume()
			if e.State() != before {
				return false
			}
			_, ticks, ok := runToCompletion(e, total)
			return ok && at+ticks == total
		},
		genSequence(),
		gen.IntRange(0, 100),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

// TestResetProperty checks that reset at any point lands in idle with zeroed
// counters and no record.
func TestResetProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("reset always idles", prop.ForAll(
		func(s []models.Exercise, at int, pause bool) bool {
			e := NewEngine()
			e.Start(s)
			for i := 0; i < at; i++ {
				if _, done := e.Tick(); done {
					break
				}
			}
			if pause {
				e.Pause()
			}
			e.Reset()
			if e.State() != (State{Phase: PhaseIdle}) {
				return false
			}
			_, done := e.Tick()
			return !done
		},
		genSequence(),
		gen.IntRange(0, 60),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

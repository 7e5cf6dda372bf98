package session

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/setflow/internal/models"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordSink struct {
	mu   sync.Mutex
	recs []models.HistoryRecord
}

func (s *recordSink) add(rec models.HistoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
}

func (s *recordSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

// TestRunnerTimerLifecycle verifies the timer is held only while the engine
// is resting or exercising.
func TestRunnerTimerLifecycle(t *testing.T) {
	sched := &ManualScheduler{}
	sink := &recordSink{}
	r := NewRunner(sched, time.Second, sink.add, quietLog())

	if sched.Active() {
		t.Fatal("timer active before start")
	}

	r.Start(nil)
	if sched.Active() {
		t.Fatal("timer acquired for an empty sequence")
	}

	r.Start(seq([2]int{2, 1}, [2]int{1, 0}))
	if !sched.Active() {
		t.Fatal("timer not acquired on start")
	}

	sched.Fire()
	s := r.Pause()
	if sched.Active() {
		t.Fatal("timer still held while paused")
	}
	if s.Phase != PhasePaused || s.DelayLeft != 0 || s.TimeLeft != 2 {
		t.Errorf("paused snapshot = %+v", s)
	}
	if sched.Fire() {
		t.Error("tick delivered while paused")
	}

	r.Resume()
	if !sched.Active() {
		t.Fatal("timer not reacquired on resume")
	}

	for i := 0; i < 5; i++ {
		sched.Fire()
	}
	if sched.Active() {
		t.Error("timer still held after completion")
	}
	if got := sink.len(); got != 1 {
		t.Fatalf("records = %d, want 1", got)
	}
	if rec := sink.recs[0]; rec.Duration != 4 || rec.ExerciseCount != 2 {
		t.Errorf("record = %+v", rec)
	}
	if got := r.Snapshot().Phase; got != PhaseCompleted {
		t.Errorf("phase = %v, want completed", got)
	}
}

// TestRunnerResetReleasesTimer verifies reset drops the timer and records nothing.
func TestRunnerResetReleasesTimer(t *testing.T) {
	sched := &ManualScheduler{}
	sink := &recordSink{}
	r := NewRunner(sched, time.Second, sink.add, quietLog())

	r.Start(seq([2]int{1, 0}))
	sched.Fire()
	s := r.Reset()
	if sched.Active() {
		t.Error("timer held after reset")
	}
	if s.Phase != PhaseIdle || s.TimeLeft != 0 || s.DelayLeft != 0 || s.CurrentIndex != 0 {
		t.Errorf("reset snapshot = %+v", s)
	}
	if sink.len() != 0 {
		t.Error("reset produced a record")
	}
}

// TestRunnerDropsStaleTicks verifies a tick from a released subscription does
// not advance a later run.
func TestRunnerDropsStaleTicks(t *testing.T) {
	var fns []func()
	sched := schedulerFunc(func(_ time.Duration, fn func()) func() {
		fns = append(fns, fn)
		return func() {}
	})
	r := NewRunner(sched, time.Second, nil, quietLog())

	r.Start(seq([2]int{5, 0}))
	r.Pause()
	r.Resume()
	if len(fns) != 2 {
		t.Fatalf("subscriptions = %d, want 2", len(fns))
	}

	fns[0]()
	if got := r.Snapshot().TimeLeft; got != 5 {
		t.Errorf("stale tick advanced the run: timeLeft = %d, want 5", got)
	}
	fns[1]()
	if got := r.Snapshot().TimeLeft; got != 4 {
		t.Errorf("timeLeft = %d, want 4", got)
	}
}

type schedulerFunc func(time.Duration, func()) func()

func (f schedulerFunc) Every(d time.Duration, fn func()) func() { return f(d, fn) }

// TestRunnerWithTicker runs a short sequence on real tickers.
func TestRunnerWithTicker(t *testing.T) {
	done := make(chan models.HistoryRecord, 1)
	r := NewRunner(TickerScheduler{}, 5*time.Millisecond, func(rec models.HistoryRecord) { done <- rec }, quietLog())
	defer r.Close()

	r.Start(seq([2]int{2, 1}, [2]int{0, 1}))

	select {
	case rec := <-done:
		if rec.Duration != 4 || rec.ExerciseCount != 2 {
			t.Errorf("record = %+v", rec)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not complete")
	}
}

// TestTickerSchedulerCancel verifies cancel stops deliveries and is safe to
// call twice.
func TestTickerSchedulerCancel(t *testing.T) {
	var mu sync.Mutex
	count := 0
	cancel := TickerScheduler{}.Every(time.Millisecond, func() {
		mu.Lock()
		count++
		mu.Unlock()
	})
	time.Sleep(20 * time.Millisecond)
	cancel()
	cancel()
	time.Sleep(5 * time.Millisecond)

	mu.Lock()
	after := count
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != after {
		t.Errorf("ticks continued after cancel: %d -> %d", after, count)
	}
}

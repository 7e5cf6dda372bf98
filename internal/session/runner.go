package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/claude/setflow/internal/models"
)

// Runner hosts an Engine and keeps a scheduler subscription alive exactly
// while the engine is resting or exercising. All operations are serialized.
type Runner struct {
	mu         sync.Mutex
	engine     *Engine
	sched      Scheduler
	interval   time.Duration
	cancel     func()
	gen        uint64
	onComplete func(models.HistoryRecord)
	log        *slog.Logger
}

// NewRunner creates a Runner. onComplete, if set, receives each history
// record on the ticking goroutine after the runner lock is released.
func NewRunner(sched Scheduler, interval time.Duration, onComplete func(models.HistoryRecord), log *slog.Logger, opts ...Option) *Runner {
	if sched == nil {
		sched = TickerScheduler{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		engine:     NewEngine(opts...),
		sched:      sched,
		interval:   interval,
		onComplete: onComplete,
		log:        log,
	}
}

// Start begins a run over a copy of seq, restarting the tick interval.
func (r *Runner) Start(seq []models.Exercise) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(seq) == 0 {
		return r.engine.Snapshot()
	}
	r.release()
	r.engine.Start(seq)
	r.log.Info("session started", "exercises", len(seq), "total_sec", models.SequenceDuration(seq))
	r.syncTimer()
	return r.engine.Snapshot()
}

// Pause freezes the run and releases the timer.
func (r *Runner) Pause() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.Pause()
	r.syncTimer()
	return r.engine.Snapshot()
}

// Resume continues a paused run and reacquires the timer.
func (r *Runner) Resume() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.Resume()
	r.syncTimer()
	return r.engine.Snapshot()
}

// Reset abandons the run without recording it.
func (r *Runner) Reset() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.Reset()
	r.syncTimer()
	return r.engine.Snapshot()
}

// Snapshot returns the current display state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Snapshot()
}

// Close releases the timer. The engine state is left as is.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release()
}

// syncTimer acquires or releases the subscription to match the engine.
// Caller holds r.mu.
func (r *Runner) syncTimer() {
	if r.engine.Running() {
		r.acquire()
		return
	}
	r.release()
}

func (r *Runner) acquire() {
	if r.cancel != nil {
		return
	}
	r.gen++
	gen := r.gen
	r.cancel = r.sched.Every(r.interval, func() { r.tick(gen) })
}

func (r *Runner) release() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
}

// tick drops deliveries from a released subscription: a ticker may fire
// once more after cancel races with its channel.
func (r *Runner) tick(gen uint64) {
	r.mu.Lock()
	if r.cancel == nil || gen != r.gen {
		r.mu.Unlock()
		return
	}
	rec, done := r.engine.Tick()
	if done {
		r.release()
	}
	onComplete := r.onComplete
	r.mu.Unlock()

	if !done {
		return
	}
	r.log.Info("session completed", "history_id", rec.ID, "duration_sec", rec.Duration, "exercises", rec.ExerciseCount)
	if onComplete != nil {
		onComplete(rec)
	}
}

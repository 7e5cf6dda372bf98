package session

import (
	"sync"
	"time"
)

// DefaultInterval is the nominal tick period.
const DefaultInterval = time.Second

// Scheduler delivers periodic ticks. Every starts a repeating callback and
// returns a function that cancels it; cancel must not block and may be
// called from inside fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler runs each subscription on its own time.Ticker goroutine.
type TickerScheduler struct{}

// Every implements Scheduler.
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fn()
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

// ManualScheduler fires ticks only when Fire is called. The terminal UI
// drives it from its own frame ticks; tests use it to step a Runner.
type ManualScheduler struct {
	mu sync.Mutex
	fn func()
	id uint64
}

// Every implements Scheduler. A new subscription replaces any previous one.
func (s *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id++
	id := s.id
	s.fn = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.id == id {
			s.fn = nil
		}
	}
}

// Active reports whether a subscription is registered.
func (s *ManualScheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn != nil
}

// Fire delivers one tick and reports whether anything was subscribed.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Package monitor runs a talent's background work: a periodic poll or a
// one-shot timer, never more than one at a time per Slot.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MinInterval replaces a non-positive polling interval.
const MinInterval = 100 * time.Millisecond

// Slot owns at most one running task. Starting a task cancels the previous
// one. The zero value is not usable; use New.
type Slot struct {
	name   string
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// New returns an idle slot. name appears in log lines.
func New(name string, logger *log.Logger) *Slot {
	if logger == nil {
		logger = log.Default()
	}
	return &Slot{name: name, logger: logger.With("monitor", name)}
}

// Every runs fn every interval until stopped or replaced. The first call
// happens after one interval. A non-positive interval runs at MinInterval.
func (s *Slot) Every(interval time.Duration, fn func(ctx context.Context)) {
	if interval <= 0 {
		s.logger.Warn("non-positive interval, using minimum", "interval", interval, "min", MinInterval)
		interval = MinInterval
	}
	ctx, gen := s.replace()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.current(gen) {
					return
				}
				s.run(ctx, fn)
			}
		}
	}()
}

// After runs fn once after delay unless stopped or replaced first.
func (s *Slot) After(delay time.Duration, fn func(ctx context.Context)) {
	ctx, gen := s.replace()
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		// Finish the slot before running so fn may start a new task.
		cancel, ok := s.finish(gen)
		if !ok {
			return
		}
		defer cancel()
		s.run(ctx, fn)
	}()
}

// Stop cancels the running task. It reports whether a task was running and
// is a no-op on an idle slot.
func (s *Slot) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	s.gen++
	return true
}

// Active reports whether a task is scheduled.
func (s *Slot) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Slot) replace() (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	return ctx, s.gen
}

func (s *Slot) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen && s.cancel != nil
}

// finish marks a one-shot task as done if it is still the current one.
func (s *Slot) finish(gen uint64) (context.CancelFunc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.cancel == nil {
		return nil, false
	}
	cancel := s.cancel
	s.cancel = nil
	s.gen++
	return cancel, true
}

func (s *Slot) run(ctx context.Context, fn func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("monitor task panicked", "panic", r)
		}
	}()
	fn(ctx)
}

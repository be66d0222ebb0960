// Package scheduler computes and arms backoff-delayed reconnect attempts.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Scheduler owns the reconnect backoff policy: exponential delays with
// randomized jitter, capped at a maximum delay and a maximum attempt count.
// Any armed timer is cancellable so a successful connect or an explicit
// disconnect can guarantee no stray attempt fires afterwards.
type Scheduler struct {
	log         *slog.Logger
	maxAttempts int

	mu      sync.Mutex
	bo      *backoff.ExponentialBackOff
	attempt int
	timer   *time.Timer
	gen     int
}

// New creates a scheduler. maxAttempts of 0 means unlimited.
func New(baseDelay, maxDelay time.Duration, maxAttempts int, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = baseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.3
	bo.MaxInterval = maxDelay
	bo.MaxElapsedTime = 0 // Never stop based on elapsed time
	bo.Reset()

	return &Scheduler{
		log:         log,
		maxAttempts: maxAttempts,
		bo:          bo,
	}
}

// Schedule arms a timer for the next attempt and returns the attempt number
// and delay. ok is false when attempts are exhausted; fn is then not armed
// and the caller must treat the failure as terminal.
func (s *Scheduler) Schedule(fn func(attempt int)) (attempt int, delay time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxAttempts > 0 && s.attempt >= s.maxAttempts {
		return s.attempt, 0, false
	}

	s.attempt++
	attempt = s.attempt
	delay = s.bo.NextBackOff()

	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		stale := gen != s.gen
		s.mu.Unlock()
		if stale {
			return
		}
		fn(attempt)
	})

	s.log.Debug("reconnect scheduled", "attempt", attempt, "delay", delay)
	return attempt, delay, true
}

// Cancel stops any armed timer. A timer that already fired but has not yet
// run its callback is invalidated as well.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Reset cancels any armed timer and restores the backoff and attempt counter
// to their initial values. Called on successful connect and on disconnect.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.bo.Reset()
	s.attempt = 0
}

// Attempt returns the number of attempts scheduled in the current cycle.
func (s *Scheduler) Attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

package scheduler

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// Handle identifies a scheduled callback.
type Handle string

// Scheduler runs one-shot deferred callbacks.
type Scheduler interface {
	// Schedule runs fn once after delay and returns a handle to cancel it.
	Schedule(delay time.Duration, fn func()) Handle
	// Cancel stops a pending callback. Unknown or already fired handles are
	// ignored. It reports whether a pending callback was stopped.
	Cancel(handle Handle) bool
}

// TimerScheduler is an in-process Scheduler backed by time.AfterFunc.
type TimerScheduler struct {
	mu      sync.Mutex
	timers  map[Handle]*time.Timer
	stopped bool
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{
		timers: make(map[Handle]*time.Timer),
	}
}

func (s *TimerScheduler) Schedule(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}
	handle := Handle(ulid.Make().String())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		log.Warn().Str("handle", string(handle)).Msg("scheduler stopped, callback dropped")
		return handle
	}

	s.timers[handle] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		_, pending := s.timers[handle]
		delete(s.timers, handle)
		s.mu.Unlock()
		if !pending {
			return
		}

		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("handle", string(handle)).
					Msg("scheduled callback panicked")
			}
		}()
		fn()
	})
	return handle
}

func (s *TimerScheduler) Cancel(handle Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[handle]
	if !ok {
		return false
	}
	delete(s.timers, handle)
	return timer.Stop()
}

// Pending returns the number of callbacks that have not fired or been canceled.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending callback. Later Schedule calls are dropped.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for handle, timer := range s.timers {
		timer.Stop()
		delete(s.timers, handle)
	}
}

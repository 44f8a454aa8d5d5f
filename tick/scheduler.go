// Package tick drives a periodic, phase-aligned display refresh. Ticks
// land on every instant congruent to the origin modulo the period, no
// matter where the scheduler is started, and re-arming always computes a
// fresh delay from the current clock reading so drift never accumulates.
package tick

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/soltimer-dev/soltimer/timemath"
)

// DelayToNext returns the milliseconds from now until the next aligned
// tick of the clock whose phase is defined by origin and period. A query
// made exactly at a tick boundary is scheduled for the following tick,
// never an immediate re-fire. Negative now and negative origin are both
// well-defined thanks to floored modulo.
func DelayToNext(origin, period, now int64) int64 {
	phase := timemath.FloorMod(origin, period)
	delay := timemath.FloorMod(phase-now, period)
	if delay == 0 {
		return period
	}
	return delay
}

// Scheduler repeatedly invokes a callback on the phase-aligned tick
// schedule. It is either idle or armed; re-arming while armed cancels
// the pending fire and computes a fresh delay, so it can never
// double-fire. The callback is delivered from the clock's timer
// goroutine; hosts that also mutate shared state must keep both on one
// logical thread or synchronize externally.
type Scheduler struct {
	mu    sync.Mutex
	clock clockwork.Clock
	timer clockwork.Timer
	armed bool

	// gen identifies the current fire chain. Each Arm starts a new
	// generation; a fire from a stale generation neither dispatches nor
	// re-arms, so a re-arm that lands while a callback is in flight can
	// never leave two chains alive.
	gen    uint64
	origin int64
	period int64
	fn     func(nowMillis int64)
}

// NewScheduler returns an idle scheduler. A nil clock selects the real
// wall clock; tests pass a clockwork fake.
func NewScheduler(clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock}
}

// Arm starts the repeating callback. The first fire happens immediately
// so the host can paint the initial value; every later fire lands on the
// aligned schedule. Arming an already-armed scheduler replaces the
// pending fire.
func (s *Scheduler) Arm(origin, period int64, fn func(nowMillis int64)) {
	if period <= 0 {
		panic(fmt.Sprintf("tick: period must be positive, got %d", period))
	}
	if fn == nil {
		panic("tick: nil callback")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.gen++
	gen := s.gen
	s.origin = origin
	s.period = period
	s.fn = fn
	s.armed = true
	s.timer = s.clock.AfterFunc(0, func() { s.fire(gen) })
	log.Trace().Int64("origin", origin).Int64("period", period).Msg("scheduler armed")
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if !s.armed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	fn := s.fn
	now := s.clock.Now().UnixMilli()
	s.mu.Unlock()

	fn(now)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed || gen != s.gen {
		return
	}
	delay := DelayToNext(s.origin, s.period, s.clock.Now().UnixMilli())
	s.timer = s.clock.AfterFunc(time.Duration(delay)*time.Millisecond, func() { s.fire(gen) })
}

// Stop cancels any pending fire and returns the scheduler to idle.
// Stopping an idle scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed {
		log.Trace().Msg("scheduler stopped")
	}
	s.cancelLocked()
}

// Armed reports whether a fire is pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.armed = false
}

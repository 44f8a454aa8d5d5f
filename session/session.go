package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/soltimer-dev/soltimer/penalty"
	"github.com/soltimer-dev/soltimer/record"
	"github.com/soltimer-dev/soltimer/tick"
	"github.com/soltimer-dev/soltimer/timer"
)

// Session drives one attempt end to end. It supplies clock instants to
// the timer (which never reads a clock itself), runs the display refresh
// scheduler, applies the inspection overrun policy, and archives the
// finished result. All timer access is serialized by the session's
// mutex, which is the external synchronization the core requires.
type Session struct {
	ID     uuid.UUID
	Puzzle string
	Spec   PuzzleSpec

	mu    sync.Mutex
	tm    *timer.Timer
	sched *tick.Scheduler
	clock clockwork.Clock
	store record.Store
}

// New creates a session with a fresh timer. A nil clock selects the real
// wall clock.
func New(puzzle string, spec PuzzleSpec, store record.Store, clock clockwork.Clock) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	tm := timer.New(spec.Inspection)
	if spec.RefreshMillis > 0 {
		tm.RefreshPeriodMillis = spec.RefreshMillis
	}
	return &Session{
		ID:     uuid.New(),
		Puzzle: puzzle,
		Spec:   spec,
		tm:     tm,
		sched:  tick.NewScheduler(clock),
		clock:  clock,
		store:  store,
	}
}

// Restore rebuilds a session around a checkpointed timer. Corrupt
// checkpoints surface as an error so the caller can fall back.
func Restore(puzzle string, spec PuzzleSpec, store record.Store, clock clockwork.Clock, hash record.Hash) (*Session, error) {
	tm, err := record.Retrieve[*timer.Timer](store, hash)
	if err != nil {
		return nil, err
	}
	s := New(puzzle, spec, store, clock)
	tm.Mark(s.now())
	s.tm = tm
	return s, nil
}

// RestoreOrFresh is the crash-recovery entry point: a checkpoint that
// cannot be read is logged and replaced with a fresh attempt rather than
// crashing the host.
func RestoreOrFresh(puzzle string, spec PuzzleSpec, store record.Store, clock clockwork.Clock, hash record.Hash) *Session {
	s, err := Restore(puzzle, spec, store, clock, hash)
	if err != nil {
		log.Warn().Err(err).Str("puzzle", puzzle).Msg("checkpoint unreadable, starting fresh attempt")
		return New(puzzle, spec, store, clock)
	}
	return s
}

func (s *Session) now() int64 {
	return s.clock.Now().UnixMilli()
}

// OnCue installs the host's cue observer.
func (s *Session) OnCue(fn func(timer.Cue)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tm.OnCue = fn
}

// Stage returns the attempt's current stage.
func (s *Session) Stage() timer.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tm.CurrentStage()
}

// Penalties returns the penalties accrued so far.
func (s *Session) Penalties() penalty.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tm.PenaltySet()
}

// Readings marks the timer at the current instant and returns the
// elapsed inspection and solve times.
func (s *Session) Readings() (inspection, solve int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tm.Mark(s.now())
	return s.tm.ElapsedInspectionTime(), s.tm.ElapsedSolveTime()
}

func (s *Session) StartInspection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tm.StartInspection(s.now())
}

func (s *Session) HoldForStart(inspectionHold bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tm.HoldForStart(s.now(), inspectionHold)
}

func (s *Session) StartSolve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tm.StartSolve(s.now())
}

func (s *Session) PauseSolve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tm.PauseSolve(s.now())
}

func (s *Session) ResumeSolve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tm.ResumeSolve(s.now())
}

func (s *Session) IncurPreStartPenalty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tm.IncurPreStartPenalty()
}

func (s *Session) IncurPostStartPenalty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tm.IncurPostStartPenalty()
}

// StopSolve finalizes the attempt and archives its result.
func (s *Session) StopSolve() (*timer.Result, record.Hash, error) {
	s.sched.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.tm.StopSolve(now)
	result := s.tm.Finalize(s.ID.String(), s.Puzzle, now)
	hash, err := s.store.Put(result)
	if err != nil {
		return result, 0, err
	}
	log.Info().
		Str("attempt", result.AttemptID).
		Str("puzzle", result.Puzzle).
		Int64("exact_millis", result.ExactMillis).
		Int64("reported_millis", result.ReportedMillis).
		Bool("dnf", result.DNF).
		Msg("attempt recorded")
	return result, hash, nil
}

// StartRefresh arms the display scheduler. Each tick marks the timer,
// applies the inspection overrun policy, and hands the timer to fn for
// rendering. The tick phase is aligned to the instant refresh begins.
func (s *Session) StartRefresh(fn func(tm *timer.Timer)) {
	s.mu.Lock()
	period := s.tm.RefreshPeriodMillis
	s.mu.Unlock()
	s.sched.Arm(s.now(), period, func(now int64) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.tm.Mark(now)
		s.applyInspectionPolicy()
		fn(s.tm)
	})
}

// StopRefresh idles the scheduler.
func (s *Session) StopRefresh() {
	s.sched.Stop()
}

// applyInspectionPolicy fires the overrun cue once the configured
// inspection duration is exceeded and, two seconds later, the timed-out
// cue with its DNF penalty. Both are at-most-once by the cue contract.
func (s *Session) applyInspectionPolicy() {
	if !s.Spec.Inspection || s.tm.CurrentStage() != timer.InspectionStarted {
		return
	}
	elapsed := s.tm.ElapsedInspectionTime()
	limit := s.Spec.InspectionMillis()
	if elapsed >= limit {
		s.tm.FireCue(timer.CueInspectionTimeOverrun)
	}
	if elapsed >= limit+2000 {
		if s.tm.FireCue(timer.CueInspectionTimedOut) {
			s.tm.IncurDNF()
			log.Info().Str("attempt", s.ID.String()).Msg("inspection timed out, attempt is DNF")
		}
	}
}

// Checkpoint writes the timer's binary form to the store so a process
// restart can pick the attempt back up.
func (s *Session) Checkpoint() (record.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Put(s.tm)
}

// SuspendJSON produces the timer's JSON form at the current instant,
// folding any in-progress interval into the accumulators.
func (s *Session) SuspendJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tm.MarshalJSONAt(s.now())
}

// ResumeJSON replaces the session's timer with one restored from its
// JSON form, re-anchored to the current instant.
func (s *Session) ResumeJSON(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tm, err := timer.UnmarshalJSONAt(data, s.now())
	if err != nil {
		return err
	}
	tm.OnCue = s.tm.OnCue
	s.tm = tm
	return nil
}

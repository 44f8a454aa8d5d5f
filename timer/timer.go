// Package timer implements the solve attempt state machine: inspection
// and solve phases, pause/resume bookkeeping, one-shot cues, penalty
// accrual and lossless persistence. All timing is pure-functional over
// caller-supplied instants in milliseconds; the machine never reads a
// clock of its own, which keeps every behavior deterministic under test.
//
// The machine is not internally thread-safe. Exactly one logical owner
// issues mutating calls; cross-thread access must be synchronized by the
// host.
package timer

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/soltimer-dev/soltimer/penalty"
)

// TimeUnset marks a timestamp field that has not been recorded.
const TimeUnset int64 = -1

// DefaultRefreshPeriodMillis is the display refresh period used when the
// host does not configure one.
const DefaultRefreshPeriodMillis int64 = 30

// Timer is the aggregate state of one solve attempt. Fields are exported
// for the persisted forms; hosts mutate only through the methods below.
// Calling a mutator from an illegal stage is a caller bug and panics.
type Timer struct {
	Stage     Stage
	FiredCues uint64

	// PauseCuePending re-arms the solve-paused cue for the current pause
	// interval. It is persisted so a restore mid-pause neither replays
	// nor loses the cue.
	PauseCuePending bool

	InspectionEnabled bool

	InspStartedAt  int64
	InspStoppedAt  int64
	SolveStartedAt int64
	SolveStoppedAt int64

	// Extra-time accumulators make pause/resume mathematically equivalent
	// to a single contiguous interval.
	InspExtraMillis  int64
	SolveExtraMillis int64

	// MarkedAt is the most recent instant the machine has seen. Running
	// elapsed reads are relative to it, so reads themselves stay pure.
	MarkedAt int64

	RefreshPeriodMillis int64
	Penalties           penalty.Set
	Result              *Result

	// OnCue observes each cue as it fires. Transient host wiring, never
	// persisted.
	OnCue func(Cue) `json:"-" msgpack:"-"`
}

// New returns a fresh attempt in the Unused stage.
func New(inspectionEnabled bool) *Timer {
	return &Timer{
		Stage:               Unused,
		InspectionEnabled:   inspectionEnabled,
		InspStartedAt:       TimeUnset,
		InspStoppedAt:       TimeUnset,
		SolveStartedAt:      TimeUnset,
		SolveStoppedAt:      TimeUnset,
		MarkedAt:            TimeUnset,
		RefreshPeriodMillis: DefaultRefreshPeriodMillis,
		Penalties:           penalty.None,
	}
}

func (t *Timer) violation(op string) {
	panic(fmt.Sprintf("timer: %s illegal in stage %s", op, t.Stage))
}

// StartInspection begins the inspection phase. Legal from Unused or
// InspectionHoldingForStart, and only when the puzzle uses inspection.
func (t *Timer) StartInspection(now int64) {
	if !t.InspectionEnabled {
		t.violation("StartInspection (inspection disabled)")
	}
	if t.Stage != Unused && t.Stage != InspectionHoldingForStart {
		t.violation("StartInspection")
	}
	t.InspStartedAt = now
	t.MarkedAt = now
	t.Stage = InspectionStarted
	t.FireCue(CueInspectionStarted)
	log.Debug().Int64("now", now).Msg("inspection started")
}

// StopInspection records the end of inspection. The stage does not
// advance; that happens only when the solve itself starts.
func (t *Timer) StopInspection(now int64) {
	if t.Stage != InspectionStarted {
		t.violation("StopInspection")
	}
	t.InspStoppedAt = now
	t.MarkedAt = now
}

// HoldForStart pre-arms the next phase while the host UI is held. No
// phase timestamp is recorded; only the holding cue fires.
func (t *Timer) HoldForStart(now int64, inspectionHold bool) {
	if inspectionHold {
		if !t.InspectionEnabled {
			t.violation("HoldForStart (inspection disabled)")
		}
		if t.Stage != Unused && t.Stage != InspectionHoldingForStart {
			t.violation("HoldForStart (inspection)")
		}
		t.Stage = InspectionHoldingForStart
		t.MarkedAt = now
		t.FireCue(CueInspectionHoldingForStart)
		return
	}
	if t.Stage != Unused && t.Stage != InspectionStarted && t.Stage != SolveHoldingForStart {
		t.violation("HoldForStart (solve)")
	}
	if t.Stage == Unused && t.InspectionEnabled {
		t.violation("HoldForStart (solve, inspection pending)")
	}
	t.Stage = SolveHoldingForStart
	t.MarkedAt = now
	t.FireCue(CueSolveHoldingForStart)
}

// StartSolve begins timing the solve. Legal from any pre-solve stage; a
// still-open inspection interval is finalized at the same instant.
func (t *Timer) StartSolve(now int64) {
	if !t.Stage.preSolve() {
		t.violation("StartSolve")
	}
	if t.InspStartedAt != TimeUnset && t.InspStoppedAt == TimeUnset {
		t.InspStoppedAt = now
	}
	t.SolveStartedAt = now
	t.MarkedAt = now
	t.Stage = SolveStarted
	t.FireCue(CueSolveStarted)
	log.Debug().Int64("now", now).Msg("solve started")
}

// PauseSolve folds the interval since the last start/resume into the
// extra-time accumulator, so elapsed reads are identical immediately
// before and after the pause. The solve-paused cue re-arms for each
// distinct pause interval.
func (t *Timer) PauseSolve(now int64) {
	if t.Stage != SolveStarted {
		t.violation("PauseSolve")
	}
	t.SolveExtraMillis += now - t.SolveStartedAt
	t.MarkedAt = now
	t.Stage = SolvePaused
	t.PauseCuePending = true
	t.FireCue(CueSolvePaused)
	log.Debug().Int64("now", now).Int64("elapsed", t.ElapsedSolveTime()).Msg("solve paused")
}

// ResumeSolve resets the running start reference to now so elapsed time
// continues seamlessly from the paused value.
func (t *Timer) ResumeSolve(now int64) {
	if t.Stage != SolvePaused {
		t.violation("ResumeSolve")
	}
	t.SolveStartedAt = now
	t.MarkedAt = now
	t.Stage = SolveStarted
	t.FireCue(CueSolveResumed)
}

// StopSolve finalizes the solve. Legal from SolveStarted or SolvePaused.
func (t *Timer) StopSolve(now int64) {
	switch t.Stage {
	case SolveStarted:
	case SolvePaused:
		// The paused interval is already folded into the accumulator;
		// re-anchor so the stopped-stage arithmetic holds.
		t.SolveStartedAt = now
	default:
		t.violation("StopSolve")
	}
	t.SolveStoppedAt = now
	t.MarkedAt = now
	t.Stage = Stopped
	t.FireCue(CueSolveStopped)
	log.Debug().Int64("now", now).Int64("elapsed", t.ElapsedSolveTime()).Msg("solve stopped")
}

// Mark refreshes the machine's notion of "now" without changing stage or
// firing cues. Display polling calls it before each elapsed read, and a
// restored instance is re-anchored with it to a fresh instant without
// altering any recorded elapsed time.
func (t *Timer) Mark(now int64) {
	t.MarkedAt = now
}

// IncurPreStartPenalty appends one fixed penalty incurred before the
// solve started. Legal until the solve start timestamp is finalized.
func (t *Timer) IncurPreStartPenalty() {
	if !t.Stage.preSolve() {
		t.violation("IncurPreStartPenalty")
	}
	t.Penalties = t.Penalties.WithPreStart()
}

// IncurPostStartPenalty appends one fixed penalty incurred during the
// solve. Legal until the solve stop timestamp is finalized.
func (t *Timer) IncurPostStartPenalty() {
	if t.Stage != SolveStarted && t.Stage != SolvePaused {
		t.violation("IncurPostStartPenalty")
	}
	t.Penalties = t.Penalties.WithPostStart()
}

// IncurDNF marks the attempt did-not-finish. DNF is sticky and may be
// incurred at any stage before the attempt is finalized.
func (t *Timer) IncurDNF() {
	if t.Result != nil {
		t.violation("IncurDNF (already finalized)")
	}
	t.Penalties = t.Penalties.WithDNF()
}

// CanFireCue reports whether the cue has never fired on this instance
// and its stage precondition currently holds. Probing is never an error.
func (t *Timer) CanFireCue(c Cue) bool {
	if c < 0 || c >= cueMax || !c.fireableIn(t.Stage) {
		return false
	}
	if c == CueSolvePaused && t.PauseCuePending {
		return true
	}
	return t.FiredCues&(1<<uint(c)) == 0
}

// FireCue marks the cue fired and reports true, or reports false with no
// effect if the cue already fired or its precondition does not hold.
// This at-most-once guarantee is the machine's core contract: duplicate
// host events must never replay a lifecycle side effect.
func (t *Timer) FireCue(c Cue) bool {
	if !t.CanFireCue(c) {
		return false
	}
	t.FiredCues |= 1 << uint(c)
	if c == CueSolvePaused {
		t.PauseCuePending = false
	}
	log.Trace().Stringer("cue", c).Stringer("stage", t.Stage).Msg("cue fired")
	if t.OnCue != nil {
		t.OnCue(c)
	}
	return true
}

// CurrentStage returns the lifecycle stage.
func (t *Timer) CurrentStage() Stage {
	return t.Stage
}

// PenaltySet returns the penalties accrued so far.
func (t *Timer) PenaltySet() penalty.Set {
	return t.Penalties
}

// ElapsedInspectionTime returns the inspection duration in milliseconds.
// While inspection runs it is relative to the last Mark; zero before
// inspection has started.
func (t *Timer) ElapsedInspectionTime() int64 {
	if t.InspStartedAt == TimeUnset {
		return 0
	}
	end := t.InspStoppedAt
	if end == TimeUnset {
		end = t.MarkedAt
	}
	return end - t.InspStartedAt + t.InspExtraMillis
}

// ElapsedSolveTime returns the solve duration in milliseconds, zero
// outside the solve stages. While running it is relative to the last
// Mark; while paused it is exactly the folded accumulator.
func (t *Timer) ElapsedSolveTime() int64 {
	switch t.Stage {
	case SolveStarted:
		return t.MarkedAt - t.SolveStartedAt + t.SolveExtraMillis
	case SolvePaused:
		return t.SolveExtraMillis
	case Stopped:
		return t.SolveStoppedAt - t.SolveStartedAt + t.SolveExtraMillis
	default:
		return 0
	}
}

// ResultTime returns the solve time inclusive of fixed time penalties,
// before official rounding. Zero before the solve has started; once it
// has, penalties count even for a zero-duration solve.
func (t *Timer) ResultTime() int64 {
	switch t.Stage {
	case SolveStarted, SolvePaused, Stopped:
		return t.ElapsedSolveTime() + t.Penalties.TimePenaltyMillis()
	default:
		return 0
	}
}

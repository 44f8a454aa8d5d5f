package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltimer-dev/soltimer/penalty"
)

func TestFullAttemptWithPause(t *testing.T) {
	tm := New(true)
	require.Equal(t, Unused, tm.CurrentStage())

	tm.StartInspection(100_000)
	require.Equal(t, InspectionStarted, tm.CurrentStage())

	tm.StopInspection(102_000)
	require.Equal(t, InspectionStarted, tm.CurrentStage(),
		"stage advances only when the solve starts")

	tm.StartSolve(102_000)
	tm.PauseSolve(104_500)
	tm.ResumeSolve(164_500)
	tm.StopSolve(167_000)

	assert.Equal(t, Stopped, tm.CurrentStage())
	assert.Equal(t, int64(2_000), tm.ElapsedInspectionTime())
	assert.Equal(t, int64(5_000), tm.ElapsedSolveTime())
}

func TestPauseIsSeamless(t *testing.T) {
	tm := New(false)
	tm.StartSolve(1_000)
	tm.Mark(4_200)
	before := tm.ElapsedSolveTime()

	tm.PauseSolve(4_200)
	assert.Equal(t, before, tm.ElapsedSolveTime(),
		"elapsed must be identical immediately before and after pause")

	// Time passing while paused does not accumulate.
	tm.Mark(50_000)
	assert.Equal(t, before, tm.ElapsedSolveTime())

	tm.ResumeSolve(60_000)
	tm.Mark(60_500)
	assert.Equal(t, before+500, tm.ElapsedSolveTime())
}

func TestSkipInspectionPath(t *testing.T) {
	tm := New(false)
	tm.HoldForStart(10, false)
	require.Equal(t, SolveHoldingForStart, tm.CurrentStage())

	tm.StartSolve(100)
	tm.StopSolve(4_600)

	assert.Equal(t, int64(0), tm.ElapsedInspectionTime())
	assert.Equal(t, int64(4_500), tm.ElapsedSolveTime())
}

func TestStartSolveFinalizesOpenInspection(t *testing.T) {
	tm := New(true)
	tm.StartInspection(1_000)
	// No explicit StopInspection; StartSolve closes the interval.
	tm.StartSolve(9_000)

	assert.Equal(t, int64(8_000), tm.ElapsedInspectionTime())
}

func TestMarkDrivesRunningReads(t *testing.T) {
	tm := New(true)
	tm.StartInspection(0)
	tm.Mark(1_250)
	assert.Equal(t, int64(1_250), tm.ElapsedInspectionTime())

	tm.Mark(3_000)
	assert.Equal(t, int64(3_000), tm.ElapsedInspectionTime())
}

func TestReadsAreZeroOutsideRelevantStage(t *testing.T) {
	tm := New(true)
	assert.Equal(t, int64(0), tm.ElapsedInspectionTime())
	assert.Equal(t, int64(0), tm.ElapsedSolveTime())
	assert.Equal(t, int64(0), tm.ResultTime())

	tm.StartInspection(100)
	assert.Equal(t, int64(0), tm.ElapsedSolveTime())
}

func TestStageViolationsPanic(t *testing.T) {
	tests := []struct {
		name string
		op   func(tm *Timer)
	}{
		{"StopInspectionBeforeStart", func(tm *Timer) { tm.StopInspection(0) }},
		{"PauseBeforeSolve", func(tm *Timer) { tm.PauseSolve(0) }},
		{"ResumeWhileRunning", func(tm *Timer) {
			tm.StartInspection(0)
			tm.StartSolve(10)
			tm.ResumeSolve(20)
		}},
		{"StopSolveBeforeStart", func(tm *Timer) { tm.StopSolve(0) }},
		{"StartInspectionTwiceAfterSolve", func(tm *Timer) {
			tm.StartInspection(0)
			tm.StartSolve(10)
			tm.StartInspection(20)
		}},
		{"StartSolveWhenStopped", func(tm *Timer) {
			tm.StartInspection(0)
			tm.StartSolve(10)
			tm.StopSolve(20)
			tm.StartSolve(30)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := New(true)
			assert.Panics(t, func() { tt.op(tm) })
		})
	}
}

func TestStartInspectionPanicsWhenDisabled(t *testing.T) {
	tm := New(false)
	assert.Panics(t, func() { tm.StartInspection(0) })
	assert.Panics(t, func() { tm.HoldForStart(0, true) })
}

func TestPenaltyLegality(t *testing.T) {
	tm := New(true)
	tm.StartInspection(0)
	tm.IncurPreStartPenalty()
	tm.StartSolve(10)

	assert.Panics(t, func() { tm.IncurPreStartPenalty() },
		"pre-start penalties end once the solve start is finalized")

	tm.IncurPostStartPenalty()
	tm.StopSolve(5_010)

	assert.Panics(t, func() { tm.IncurPostStartPenalty() },
		"post-start penalties end once the solve stop is finalized")

	assert.Equal(t, 1, tm.PenaltySet().PreStartCount())
	assert.Equal(t, 1, tm.PenaltySet().PostStartCount())
}

func TestResultTimeIncludesPenalties(t *testing.T) {
	tm := New(false)
	tm.StartSolve(0)
	tm.IncurPostStartPenalty()
	tm.StopSolve(12_340)
	tm.IncurDNF()

	assert.Equal(t, int64(12_340), tm.ElapsedSolveTime())
	assert.Equal(t, int64(12_340+2_000), tm.ResultTime())
	assert.True(t, tm.PenaltySet().IsDNF())
}

func TestResultTimeZeroDurationSolveKeepsPenalties(t *testing.T) {
	tm := New(false)
	tm.StartSolve(1_000)
	tm.IncurPostStartPenalty()
	tm.StopSolve(1_000)

	assert.Equal(t, int64(0), tm.ElapsedSolveTime())
	assert.Equal(t, int64(2_000), tm.ResultTime(),
		"a stopped zero-duration solve still owes its penalty time")
}

func TestFinalize(t *testing.T) {
	tm := New(false)
	tm.StartSolve(0)
	tm.StopSolve(21_001)

	r := tm.Finalize("attempt-1", "333", 99_000)
	require.NotNil(t, r)
	assert.Equal(t, int64(21_001), r.ExactMillis)
	assert.Equal(t, int64(21_000), r.ReportedMillis, "reported result is truncated")
	assert.Equal(t, int64(99_000), r.RecordedAt)
	assert.Same(t, r, tm.Result)

	// A duplicate Finalize never alters the recorded time.
	again := tm.Finalize("attempt-1", "333", 123_456)
	assert.Same(t, r, again)
}

func TestFinalizeBeforeStopPanics(t *testing.T) {
	tm := New(false)
	tm.StartSolve(0)
	assert.Panics(t, func() { tm.Finalize("a", "333", 10) })
}

func TestCueFiresAtMostOnce(t *testing.T) {
	tm := New(true)
	tm.StartInspection(0)

	// StartInspection already consumed the cue.
	assert.False(t, tm.CanFireCue(CueInspectionStarted))
	assert.False(t, tm.FireCue(CueInspectionStarted))

	// A derived cue is fireable exactly once while its stage holds.
	assert.True(t, tm.CanFireCue(CueInspectionTimeOverrun))
	assert.True(t, tm.FireCue(CueInspectionTimeOverrun))
	for i := 0; i < 3; i++ {
		assert.False(t, tm.FireCue(CueInspectionTimeOverrun))
	}
}

func TestCueRequiresStagePrecondition(t *testing.T) {
	tm := New(true)
	assert.False(t, tm.CanFireCue(CueInspectionTimeOverrun))
	assert.False(t, tm.FireCue(CueInspectionTimeOverrun))

	tm.StartInspection(0)
	assert.True(t, tm.CanFireCue(CueInspectionTimeOverrun),
		"cue becomes fireable once the precondition stage is reached")

	// Unknown cue ordinals are never fireable.
	assert.False(t, tm.CanFireCue(Cue(99)))
	assert.False(t, tm.FireCue(Cue(99)))
}

func TestSolvePausedCueRefiresPerPause(t *testing.T) {
	var fired []Cue
	tm := New(false)
	tm.OnCue = func(c Cue) { fired = append(fired, c) }

	tm.StartSolve(0)
	tm.PauseSolve(100)
	tm.ResumeSolve(200)
	tm.PauseSolve(300)
	tm.ResumeSolve(400)
	tm.StopSolve(500)

	var pauses int
	for _, c := range fired {
		if c == CueSolvePaused {
			pauses++
		}
	}
	assert.Equal(t, 2, pauses, "solve-paused fires once per distinct pause interval")

	// Within one pause interval the cue still fires at most once.
	tm2 := New(false)
	tm2.StartSolve(0)
	tm2.PauseSolve(100)
	assert.False(t, tm2.FireCue(CueSolvePaused), "PauseSolve consumed this interval's cue")
}

func TestOnCueObservesLifecycle(t *testing.T) {
	var fired []Cue
	tm := New(true)
	tm.OnCue = func(c Cue) { fired = append(fired, c) }

	tm.HoldForStart(0, true)
	tm.StartInspection(10)
	tm.StartSolve(2_000)
	tm.StopSolve(9_000)

	assert.Equal(t, []Cue{
		CueInspectionHoldingForStart,
		CueInspectionStarted,
		CueSolveStarted,
		CueSolveStopped,
	}, fired)
}

func TestPenaltySetAccessor(t *testing.T) {
	tm := New(false)
	assert.Equal(t, penalty.None, tm.PenaltySet())
}

package timer

import "fmt"

// Cue is a one-shot lifecycle notification. Each cue fires at most once
// per Timer instance (the solve-paused cue once per distinct pause
// interval, see Timer.PauseSolve); the fired set survives pause/resume
// and serialization round-trips, so a restored instance never replays a
// side effect the host has already performed.
type Cue int

const (
	CueInspectionHoldingForStart Cue = iota
	CueInspectionStarted
	CueInspectionTimeOverrun
	CueInspectionTimedOut
	CueSolveHoldingForStart
	CueSolveStarted
	CueSolvePaused
	CueSolveResumed
	CueSolveStopped
	cueMax
)

func (c Cue) String() string {
	switch c {
	case CueInspectionHoldingForStart:
		return "InspectionHoldingForStart"
	case CueInspectionStarted:
		return "InspectionStarted"
	case CueInspectionTimeOverrun:
		return "InspectionTimeOverrun"
	case CueInspectionTimedOut:
		return "InspectionTimedOut"
	case CueSolveHoldingForStart:
		return "SolveHoldingForStart"
	case CueSolveStarted:
		return "SolveStarted"
	case CueSolvePaused:
		return "SolvePaused"
	case CueSolveResumed:
		return "SolveResumed"
	case CueSolveStopped:
		return "SolveStopped"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// fireableIn reports whether the cue's stage precondition holds. The
// overrun and timed-out cues share the inspection-running precondition;
// whether their moment has arrived is the host's timing judgment.
func (c Cue) fireableIn(s Stage) bool {
	switch c {
	case CueInspectionHoldingForStart:
		return s == InspectionHoldingForStart
	case CueInspectionStarted, CueInspectionTimeOverrun, CueInspectionTimedOut:
		return s == InspectionStarted
	case CueSolveHoldingForStart:
		return s == SolveHoldingForStart
	case CueSolveStarted, CueSolveResumed:
		return s == SolveStarted
	case CueSolvePaused:
		return s == SolvePaused
	case CueSolveStopped:
		return s == Stopped
	}
	return false
}

package timer

import "fmt"

// Stage is the attempt lifecycle phase. Stages advance strictly forward
// except for the SolveStarted/SolvePaused cycle; Stopped is terminal
// until the host discards the instance and creates a fresh one.
type Stage int

const (
	Unused Stage = iota
	InspectionHoldingForStart
	InspectionStarted
	SolveHoldingForStart
	SolveStarted
	SolvePaused
	Stopped
	stageMax
)

func (s Stage) String() string {
	switch s {
	case Unused:
		return "Unused"
	case InspectionHoldingForStart:
		return "InspectionHoldingForStart"
	case InspectionStarted:
		return "InspectionStarted"
	case SolveHoldingForStart:
		return "SolveHoldingForStart"
	case SolveStarted:
		return "SolveStarted"
	case SolvePaused:
		return "SolvePaused"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// preSolve reports whether the solve has not yet started, i.e. a stage
// from which StartSolve is legal.
func (s Stage) preSolve() bool {
	switch s {
	case Unused, InspectionHoldingForStart, InspectionStarted, SolveHoldingForStart:
		return true
	}
	return false
}

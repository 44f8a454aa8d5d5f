package timer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shamaton/msgpack/v2"

	"github.com/soltimer-dev/soltimer/penalty"
)

// ErrCorrupt reports malformed persisted state. Unlike stage violations
// it is recoverable: the host should fall back to a fresh Timer instead
// of crashing.
var ErrCorrupt = errors.New("timer: corrupt persisted state")

// Serialize writes the binary persisted form: every field of the
// aggregate, framed by msgpack. The transient OnCue hook is excluded; a
// restored instance has no opinion about live host wiring.
func (t *Timer) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, t)
}

// Deserialize replaces the receiver with the decoded state. Decode
// failures and out-of-range codes wrap ErrCorrupt; on error the receiver
// is left untouched.
func (t *Timer) Deserialize(r io.Reader) error {
	var decoded Timer
	if err := msgpack.UnmarshalRead(r, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := decoded.validate(); err != nil {
		return err
	}
	onCue := t.OnCue
	*t = decoded
	t.OnCue = onCue
	return nil
}

func (t *Timer) validate() error {
	if t.Stage < 0 || t.Stage >= stageMax {
		return fmt.Errorf("%w: stage code %d out of range", ErrCorrupt, int(t.Stage))
	}
	if t.FiredCues >= 1<<uint(cueMax) {
		return fmt.Errorf("%w: fired-cue mask %#x has unknown bits", ErrCorrupt, t.FiredCues)
	}
	if _, err := penalty.Decode(t.Penalties.Encode()); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if t.RefreshPeriodMillis <= 0 {
		return fmt.Errorf("%w: refresh period %d", ErrCorrupt, t.RefreshPeriodMillis)
	}
	return nil
}

// Snapshot is the structured JSON form of a Timer, produced at an
// explicit instant so any in-progress running interval is folded into
// the extra-time accumulators (the one operation that updates the
// inspection extra-time field outside an explicit pause).
type Snapshot struct {
	Stage             int    `json:"stage"`
	FiredCues         uint64 `json:"fired_cues"`
	PauseCuePending   bool   `json:"pause_cue_pending"`
	InspectionEnabled bool   `json:"inspection_enabled"`

	InspStartedAt  int64 `json:"inspection_started_at"`
	InspStoppedAt  int64 `json:"inspection_stopped_at"`
	SolveStartedAt int64 `json:"solve_started_at"`
	SolveStoppedAt int64 `json:"solve_stopped_at"`

	InspExtraMillis  int64 `json:"inspection_extra_millis"`
	SolveExtraMillis int64 `json:"solve_extra_millis"`

	RefreshPeriodMillis int64   `json:"refresh_period_millis"`
	Penalties           int64   `json:"penalties"`
	Result              *Result `json:"result,omitempty"`

	RecordedAt int64 `json:"recorded_at"`
}

func (t *Timer) inspectionRunning() bool {
	if t.InspStartedAt == TimeUnset || t.InspStoppedAt != TimeUnset {
		return false
	}
	return t.Stage == InspectionStarted || t.Stage == SolveHoldingForStart
}

// MarshalJSONAt produces the JSON form at the given instant. Running
// intervals are folded into the accumulators and re-anchored to now, so
// the snapshot is self-contained: restoring it at any later instant
// reproduces exactly the elapsed time recorded here.
func (t *Timer) MarshalJSONAt(now int64) ([]byte, error) {
	s := Snapshot{
		Stage:               int(t.Stage),
		FiredCues:           t.FiredCues,
		PauseCuePending:     t.PauseCuePending,
		InspectionEnabled:   t.InspectionEnabled,
		InspStartedAt:       t.InspStartedAt,
		InspStoppedAt:       t.InspStoppedAt,
		SolveStartedAt:      t.SolveStartedAt,
		SolveStoppedAt:      t.SolveStoppedAt,
		InspExtraMillis:     t.InspExtraMillis,
		SolveExtraMillis:    t.SolveExtraMillis,
		RefreshPeriodMillis: t.RefreshPeriodMillis,
		Penalties:           t.Penalties.Encode(),
		Result:              t.Result,
		RecordedAt:          now,
	}
	if t.inspectionRunning() {
		s.InspExtraMillis += now - t.InspStartedAt
		s.InspStartedAt = now
	}
	if t.Stage == SolveStarted {
		s.SolveExtraMillis += now - t.SolveStartedAt
		s.SolveStartedAt = now
	}
	return json.Marshal(s)
}

// UnmarshalJSONAt restores a Timer from its JSON form, re-anchoring any
// running interval to the supplied instant. Recorded elapsed time is
// preserved exactly; time spent serialized does not count.
func UnmarshalJSONAt(data []byte, now int64) (*Timer, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	pen, err := penalty.Decode(s.Penalties)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	t := &Timer{
		Stage:               Stage(s.Stage),
		FiredCues:           s.FiredCues,
		PauseCuePending:     s.PauseCuePending,
		InspectionEnabled:   s.InspectionEnabled,
		InspStartedAt:       s.InspStartedAt,
		InspStoppedAt:       s.InspStoppedAt,
		SolveStartedAt:      s.SolveStartedAt,
		SolveStoppedAt:      s.SolveStoppedAt,
		InspExtraMillis:     s.InspExtraMillis,
		SolveExtraMillis:    s.SolveExtraMillis,
		MarkedAt:            now,
		RefreshPeriodMillis: s.RefreshPeriodMillis,
		Penalties:           pen,
		Result:              s.Result,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	if t.inspectionRunning() {
		t.InspStartedAt = now
	}
	if t.Stage == SolveStarted {
		t.SolveStartedAt = now
	}
	return t, nil
}

package timer

import (
	"fmt"
	"io"

	"github.com/shamaton/msgpack/v2"

	"github.com/soltimer-dev/soltimer/timemath"
)

// Result is the finalized record of a stopped attempt: the exact
// duration, the officially rounded duration, and the penalties that
// produced it. Once built it is never mutated.
type Result struct {
	AttemptID      string `json:"attempt_id"`
	Puzzle         string `json:"puzzle"`
	ExactMillis    int64  `json:"exact_millis"`
	ReportedMillis int64  `json:"reported_millis"`
	Penalties      int64  `json:"penalties"`
	DNF            bool   `json:"dnf"`
	RecordedAt     int64  `json:"recorded_at"`
}

// Finalize builds the attempt's Result and embeds it in the Timer. Legal
// only once the attempt is Stopped; calling it again returns the record
// already built, so duplicate host events cannot alter a recorded time.
func (t *Timer) Finalize(attemptID, puzzle string, recordedAt int64) *Result {
	if t.Stage != Stopped {
		t.violation("Finalize")
	}
	if t.Result != nil {
		return t.Result
	}
	exact := t.ResultTime()
	t.Result = &Result{
		AttemptID:      attemptID,
		Puzzle:         puzzle,
		ExactMillis:    exact,
		ReportedMillis: timemath.RoundResult(exact),
		Penalties:      t.Penalties.Encode(),
		DNF:            t.Penalties.IsDNF(),
		RecordedAt:     recordedAt,
	}
	return t.Result
}

func (r *Result) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, r)
}

func (r *Result) Deserialize(rd io.Reader) error {
	var decoded Result
	if err := msgpack.UnmarshalRead(rd, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	*r = decoded
	return nil
}

// Package penalty models the penalties attached to a single solve
// attempt as an immutable value packed into one integer for storage.
package penalty

import (
	"errors"
	"fmt"
	"strings"
)

// Set records a did-not-finish flag plus counts of fixed two-second
// penalties incurred before and after the solve started. The zero value
// None carries no penalties. All mutators return a new Set.
//
// Layout: bits 0-7 pre-start count, bits 8-15 post-start count, bit 16
// the DNF flag.
type Set uint32

// None is the canonical empty penalty set.
const None Set = 0

// PlusTwoMillis is the duration added per counted penalty.
const PlusTwoMillis int64 = 2000

const (
	preStartShift  = 0
	postStartShift = 8
	countMask      = 0xFF
	dnfBit     Set = 1 << 16
	validMask  Set = dnfBit | (countMask << postStartShift) | (countMask << preStartShift)
)

// ErrMalformed reports an encoded penalty value that cannot have been
// produced by Encode.
var ErrMalformed = errors.New("penalty: malformed encoding")

// PreStartCount returns the number of penalties incurred before the
// solve started.
func (s Set) PreStartCount() int {
	return int((s >> preStartShift) & countMask)
}

// PostStartCount returns the number of penalties incurred after the
// solve started.
func (s Set) PostStartCount() int {
	return int((s >> postStartShift) & countMask)
}

// IsDNF reports whether the attempt is marked did-not-finish.
func (s Set) IsDNF() bool {
	return s&dnfBit != 0
}

// WithPreStart returns a set with one more pre-start penalty. The count
// saturates rather than wrapping into the neighboring field.
func (s Set) WithPreStart() Set {
	return s.withCount(preStartShift)
}

// WithPostStart returns a set with one more post-start penalty.
func (s Set) WithPostStart() Set {
	return s.withCount(postStartShift)
}

func (s Set) withCount(shift uint) Set {
	count := (s >> shift) & countMask
	if count == countMask {
		return s
	}
	return s + (1 << shift)
}

// WithDNF returns a set with the did-not-finish flag raised.
func (s Set) WithDNF() Set {
	return s | dnfBit
}

// Merge combines two sets: counts add (saturating) and DNF is sticky,
// so merging with a set that omits DNF never clears it. Merge is
// associative and commutative.
func (s Set) Merge(o Set) Set {
	out := None
	out |= addCount(s, o, preStartShift)
	out |= addCount(s, o, postStartShift)
	if s.IsDNF() || o.IsDNF() {
		out |= dnfBit
	}
	return out
}

func addCount(a, b Set, shift uint) Set {
	sum := ((a >> shift) & countMask) + ((b >> shift) & countMask)
	if sum > countMask {
		sum = countMask
	}
	return sum << shift
}

// TimePenaltyMillis returns the total fixed duration the counted
// penalties add to the result, across both phases.
func (s Set) TimePenaltyMillis() int64 {
	return PlusTwoMillis * int64(s.PreStartCount()+s.PostStartCount())
}

// Encode packs the set into a single integer for persistence.
func (s Set) Encode() int64 {
	return int64(s)
}

// Decode is the inverse of Encode. Values that set bits outside the
// layout are malformed persisted data, reported via ErrMalformed.
func Decode(v int64) (Set, error) {
	if v < 0 || v&^int64(validMask) != 0 {
		return None, fmt.Errorf("%w: %#x", ErrMalformed, v)
	}
	return Set(v), nil
}

func (s Set) String() string {
	if s == None {
		return "none"
	}
	var parts []string
	if n := s.PreStartCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("pre+2x%d", n))
	}
	if n := s.PostStartCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("post+2x%d", n))
	}
	if s.IsDNF() {
		parts = append(parts, "DNF")
	}
	return strings.Join(parts, " ")
}

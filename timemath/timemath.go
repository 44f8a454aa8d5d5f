// Package timemath implements the integer arithmetic behind competition
// time reporting: floored division and modulo, rounding to multiples, and
// the official result-rounding rule.
package timemath

import "fmt"

// ResultRoundingThresholdMillis is the duration (ten minutes) at which
// result rounding switches from truncation to nearest-second rounding.
const ResultRoundingThresholdMillis int64 = 600_000

// FloorDiv returns a / b with the quotient rounded toward negative
// infinity. Machine division truncates toward zero, which disagrees for
// negative numerators: FloorDiv(-3, 10) is -1, not 0.
func FloorDiv(a, b int64) int64 {
	if b == 0 {
		panic("timemath: FloorDiv by zero")
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// FloorMod returns a mod b with the result always in [0, b) for b > 0.
// FloorMod(-3, 10) is 7.
func FloorMod(a, b int64) int64 {
	if b <= 0 {
		panic(fmt.Sprintf("timemath: FloorMod modulus must be positive, got %d", b))
	}
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// FloorToMultiple rounds value down (toward negative infinity) to a
// multiple of multiple. Panics if multiple is not positive.
func FloorToMultiple(value, multiple int64) int64 {
	checkMultiple(multiple)
	return FloorDiv(value, multiple) * multiple
}

// CeilToMultiple rounds value up (toward positive infinity) to a multiple
// of multiple. Panics if multiple is not positive.
func CeilToMultiple(value, multiple int64) int64 {
	checkMultiple(multiple)
	return -FloorDiv(-value, multiple) * multiple
}

// RoundToMultiple rounds value to the nearest multiple of multiple. Ties
// are broken toward positive infinity, not away from zero. Panics if
// multiple is not positive.
func RoundToMultiple(value, multiple int64) int64 {
	checkMultiple(multiple)
	floor := FloorToMultiple(value, multiple)
	if 2*(value-floor) >= multiple {
		return floor + multiple
	}
	return floor
}

// RoundResult converts an exact millisecond duration into the reported
// result. Below ten minutes the result is truncated to a hundredth of a
// second; at or above it, rounded to the nearest whole second with ties
// up. The asymmetry is the documented competition rule, not an accident.
func RoundResult(exactMillis int64) int64 {
	abs := exactMillis
	if abs < 0 {
		abs = -abs
	}
	if abs < ResultRoundingThresholdMillis {
		return FloorToMultiple(exactMillis, 10)
	}
	return RoundToMultiple(exactMillis, 1000)
}

func checkMultiple(multiple int64) {
	if multiple <= 0 {
		panic(fmt.Sprintf("timemath: multiple must be positive, got %d", multiple))
	}
}

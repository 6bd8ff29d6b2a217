package sizing

import "math"

// SafeDivide returns n/d, or a DomainError carrying reason when d is zero.
// Callers never see Inf or NaN from a zero denominator.
func SafeDivide(n, d float64, reason string) (float64, error) {
	if d == 0 {
		return 0, NewDomainError(reason)
	}
	return n / d, nil
}

// Clamp bounds v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FloorUnits converts a fractional unit count to whole units. Negative or NaN
// inputs floor to zero and values past the int64 range saturate at the
// maximum, so a position size is never negative.
func FloorUnits(v float64) int64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(math.Floor(v))
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// IsLong reports the trade direction inferred from stop and entry ordering.
// A stop below entry is a long, above entry a short.
func IsLong(entry, stop float64) bool {
	return stop < entry
}

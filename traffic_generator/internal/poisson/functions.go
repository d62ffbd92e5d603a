package poisson

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// MAX_NANOSECONDS is 2^63, the first float64 that no longer fits an int64.
const MAX_NANOSECONDS float64 = 1 << 63

// Interval draws an exponentially distributed gap with mean lam by
// inverting the CDF at a single uniform draw from rng.
func Interval(rng *rand.Rand, lam float64) float64 {
	if lam <= 0 {
		return 0
	}

	exp := distuv.Exponential{Rate: 1 / lam}

	return exp.Quantile(rng.Float64())
}

// Nanoseconds truncates Interval to whole nanoseconds, never below 1 so that
// successive arrivals of a host stay strictly ordered. Draws beyond the int64
// range, including infinite ones, saturate at math.MaxInt64.
func Nanoseconds(rng *rand.Rand, lam float64) int64 {
	interval := Interval(rng, lam)
	if !(interval < MAX_NANOSECONDS) {
		return math.MaxInt64
	}

	gap := int64(interval)
	if gap < 1 {
		return 1
	}

	return gap
}

// After returns t+gap, or math.MaxInt64 when the sum would overflow.
func After(t, gap int64) int64 {
	if gap > math.MaxInt64-t {
		return math.MaxInt64
	}
	return t + gap
}

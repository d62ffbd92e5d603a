package distribution

import "errors"

// ErrDistribution is returned when a CDF fails validation.
var ErrDistribution = errors.New("invalid size distribution")

const (
	// FRACTION_SCALE and PERCENT_SCALE are the accepted tops of the
	// cumulative probability column.
	FRACTION_SCALE float64 = 1
	PERCENT_SCALE  float64 = 100
)

// Point is one step of a piecewise-linear empirical CDF.
type Point struct {
	Value       float64
	Probability float64
}

// CDF is an empirical flow size distribution. The zero value is empty and
// must be loaded before use.
type CDF struct {
	points []Point
	mean   float64
}

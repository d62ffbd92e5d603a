package distribution

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
)

func New(points []Point) (*CDF, error) {
	cdf := &CDF{}

	if err := cdf.Load(points); err != nil {
		return nil, err
	}

	return cdf, nil
}

// ReadFile loads a CDF from a file of "<value> <cumulative_probability>" lines.
func ReadFile(filename string) (*CDF, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDistribution, err)
	}
	defer file.Close()

	points, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return New(points)
}

// Parse reads whitespace separated value/probability pairs. Blank lines and
// lines starting with '#' are skipped.
func Parse(r io.Reader) ([]Point, error) {
	var points []Point

	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected 2 columns, got %d", ErrDistribution, lineNumber, len(fields))
		}

		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad value %q", ErrDistribution, lineNumber, fields[0])
		}

		probability, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad probability %q", ErrDistribution, lineNumber, fields[1])
		}

		points = append(points, Point{Value: value, Probability: probability})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDistribution, err)
	}

	return points, nil
}

// Load validates points and replaces the CDF contents. On failure the CDF is
// left unchanged.
func (c *CDF) Load(points []Point) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: no points", ErrDistribution)
	}

	scale := points[len(points)-1].Probability
	if scale != FRACTION_SCALE && scale != PERCENT_SCALE {
		return fmt.Errorf("%w: last cumulative probability is %v, want %v or %v", ErrDistribution, scale, FRACTION_SCALE, PERCENT_SCALE)
	}

	normalized := make([]Point, len(points))

	for i, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("%w: point %d: value %v is not finite", ErrDistribution, i, p.Value)
		}

		if p.Probability < 0 || p.Probability > scale || math.IsNaN(p.Probability) {
			return fmt.Errorf("%w: point %d: probability %v outside [0, %v]", ErrDistribution, i, p.Probability, scale)
		}

		if i > 0 {
			prev := points[i-1]

			if p.Value < prev.Value {
				return fmt.Errorf("%w: point %d: value %v decreases from %v", ErrDistribution, i, p.Value, prev.Value)
			}

			if p.Probability < prev.Probability {
				return fmt.Errorf("%w: point %d: probability %v decreases from %v", ErrDistribution, i, p.Probability, prev.Probability)
			}
		}

		normalized[i] = Point{Value: p.Value, Probability: p.Probability / scale}
	}

	c.points = normalized
	c.mean = average(normalized)

	return nil
}

// probability mass below the first point sits on the first value
func average(points []Point) float64 {
	first := points[0]
	sum := first.Value * first.Probability

	for i := 1; i < len(points); i++ {
		last, cur := points[i-1], points[i]
		sum += (cur.Value + last.Value) / 2 * (cur.Probability - last.Probability)
	}

	return sum
}

func (c *CDF) Mean() float64 {
	return c.mean
}

func (c *CDF) Points() []Point {
	return append([]Point(nil), c.points...)
}

// Sample draws a value by inverse transform of a uniform probability.
func (c *CDF) Sample(rng *rand.Rand) float64 {
	return c.Quantile(rng.Float64())
}

// Quantile returns the value whose cumulative probability is p, linearly
// interpolated inside the bracketing segment.
func (c *CDF) Quantile(p float64) float64 {
	if len(c.points) == 0 {
		panic("distribution: quantile of an empty CDF")
	}

	if p <= c.points[0].Probability {
		return c.points[0].Value
	}

	for i := 1; i < len(c.points); i++ {
		cur := c.points[i]
		if p <= cur.Probability {
			last := c.points[i-1]
			return last.Value + (cur.Value-last.Value)/(cur.Probability-last.Probability)*(p-last.Probability)
		}
	}

	return c.points[len(c.points)-1].Value
}

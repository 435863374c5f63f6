package series

import (
	"fmt"
	"math"
)

// Point is a single observation in a numeric series. Position is an ordinal
// index, a numeric column value, or an epoch-millisecond timestamp, depending
// on how the series was extracted. OriginalIndex refers back to the row the
// point was extracted from, before any sampling.
type Point struct {
	Position      float64
	Value         float64
	OriginalIndex int
}

// Validate checks the invariants the detection core relies on: every value is
// finite and positions are sorted ascending. Upstream extraction is supposed
// to guarantee both; a violation here is a bug in the caller, not bad data.
func Validate(points []Point) error {
	for i, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("series: non-finite value at index %d", i)
		}
		if math.IsNaN(p.Position) || math.IsInf(p.Position, 0) {
			return fmt.Errorf("series: non-finite position at index %d", i)
		}
		if i > 0 && p.Position < points[i-1].Position {
			return fmt.Errorf("series: positions not sorted ascending at index %d", i)
		}
	}
	return nil
}

// Values extracts the value column of a point slice.
func Values(points []Point) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}

// Bounds returns the minimum and maximum value in the series.
// Returns (0, 0) for an empty series.
func Bounds(points []Point) (min, max float64) {
	if len(points) == 0 {
		return 0, 0
	}
	min, max = points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	return min, max
}

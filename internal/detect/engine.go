package detect

import (
	"fmt"

	"shiftwatch/internal/sampling"
	"shiftwatch/internal/series"
	"shiftwatch/internal/stats"
)

// minDetectPoints is the shortest series any detector will analyze. Shorter
// input yields an empty result, not an error.
const minDetectPoints = 10

// Detect runs the selected algorithm over a bounded series and returns the
// detected change points ordered by original index. Pure dispatch; every
// numerical decision lives in the per-algorithm files.
func Detect(s sampling.Sampled, algo Algorithm, opts Options) ([]Event, error) {
	points := s.Points
	if len(points) < minDetectPoints {
		return nil, nil
	}
	if err := series.Validate(points); err != nil {
		return nil, err
	}

	values := series.Values(points)
	if stats.Variance(values) < stats.Epsilon {
		// a flat series has no change points and would otherwise feed
		// zero spreads into every threshold computation
		return nil, nil
	}

	o := opts.withDefaults(len(points))

	switch algo {
	case MovingAverage:
		return detectMovingAverage(points, values, o), nil
	case CUSUM:
		return detectCUSUM(points, values, o), nil
	case EWMA:
		return detectEWMA(points, values, o), nil
	case BinarySegmentation:
		return detectBinarySegmentation(points, values, o), nil
	case PELT:
		return detectPELT(points, values, o), nil
	case Trend:
		return detectTrend(points, values, o), nil
	case Variance:
		return detectVariance(points, values, o), nil
	default:
		return nil, fmt.Errorf("detect: unknown algorithm %d", int(algo))
	}
}

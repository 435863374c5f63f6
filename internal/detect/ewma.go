package detect

import (
	"math"

	"shiftwatch/internal/series"
	"shiftwatch/internal/stats"
)

const (
	ewmaSeedPoints  = 5
	ewmaErrorWindow = 20
	ewmaMinErrors   = 5
)

// detectEWMA tracks the one-step prediction error of an exponentially
// weighted moving average. The error is normalized by the standard deviation
// of the last twenty errors; a flagged point must also pass the trend gate
// unless the deviation is extreme on its own.
func detectEWMA(points []series.Point, values []float64, o Options) []Event {
	n := len(values)
	w := o.WindowSize
	lambda := o.Lambda
	threshold := o.EWMAThreshold

	seed := ewmaSeedPoints
	if seed > n {
		seed = n
	}
	ewma := stats.Mean(values[:seed])

	gate := o.TrendGate
	if gate <= 0 {
		gate = 4 * stats.NoiseStdDev(values) / float64(w)
	}

	idx := stats.NewIndex(values)
	errWin := stats.NewRolling(ewmaErrorWindow)

	var cands []candidate
	for i := seed; i < n; i++ {
		predErr := math.Abs(values[i] - ewma)

		if errWin.Count() >= ewmaMinErrors {
			// the mean-error term keeps the scale from collapsing on
			// near-deterministic series, where the error std alone
			// would make every point look many sigmas out
			localScale := errWin.StdDev() + 0.5*errWin.Mean() + stats.Epsilon
			normalized := predErr / localScale
			if normalized > threshold {
				beforeTrend, afterTrend := flankSlopes(idx, i, w)
				gatePassed := math.Abs(afterTrend-beforeTrend) > gate
				if gatePassed || normalized > threshold*2 {
					typ := LevelIncrease
					if values[i] < ewma {
						typ = LevelDecrease
					}
					cands = append(cands, candidate{
						idx: i,
						ev: Event{
							Position:      points[i].Position,
							Value:         points[i].Value,
							OriginalIndex: points[i].OriginalIndex,
							Confidence:    scaledConfidence(normalized / threshold),
							Algorithm:     EWMA,
							Type:          typ,
							Before: SegmentStats{
								Mean:  ewma,
								Slope: beforeTrend,
							},
							After: SegmentStats{
								Mean:  values[i],
								Slope: afterTrend,
							},
						},
					})
				}
			}
		}

		errWin.Push(predErr)
		ewma = lambda*values[i] + (1-lambda)*ewma
	}
	return consolidate(cands, w)
}

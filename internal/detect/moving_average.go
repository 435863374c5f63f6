package detect

import (
	"math"

	"shiftwatch/internal/series"
	"shiftwatch/internal/stats"
)

// detectMovingAverage slides two adjacent windows over the detrended series
// and flags indices where both the window means and the local slopes diverge.
// The dual gate keeps isolated noise spikes from registering as level shifts.
func detectMovingAverage(points []series.Point, values []float64, o Options) []Event {
	n := len(values)
	w := o.WindowSize
	if n < 2*w {
		return nil
	}

	resid := stats.Detrend(values)
	residStd := stats.StdDev(resid)
	threshold := residStd * o.ThresholdMultiplier
	if threshold < stats.Epsilon {
		return nil
	}
	gate := o.TrendGate
	if gate <= 0 {
		gate = 4 * stats.NoiseStdDev(resid) / float64(w)
	}

	residIdx := stats.NewIndex(resid)
	rawIdx := stats.NewIndex(values)

	var cands []candidate
	for i := w; i+w <= n; i++ {
		beforeMean := residIdx.RangeMean(i-w, i)
		afterMean := residIdx.RangeMean(i, i+w)
		diff := afterMean - beforeMean
		if math.Abs(diff) <= threshold {
			continue
		}
		beforeTrend, afterTrend := flankSlopes(residIdx, i, w)
		if math.Abs(afterTrend-beforeTrend) <= gate {
			continue
		}

		typ := LevelIncrease
		if diff < 0 {
			typ = LevelDecrease
		}
		cands = append(cands, candidate{
			idx: i,
			ev: Event{
				Position:      points[i].Position,
				Value:         points[i].Value,
				OriginalIndex: points[i].OriginalIndex,
				Confidence:    scaledConfidence(math.Abs(diff) / threshold),
				Algorithm:     MovingAverage,
				Type:          typ,
				Before: SegmentStats{
					Mean:  rawIdx.RangeMean(i-w, i),
					Slope: beforeTrend,
				},
				After: SegmentStats{
					Mean:  rawIdx.RangeMean(i, i+w),
					Slope: afterTrend,
				},
			},
		})
	}
	return consolidate(cands, w)
}

package detect

import (
	"math"

	"shiftwatch/internal/series"
	"shiftwatch/internal/stats"
)

// detectCUSUM maintains the classic pair of one-sided cumulative sums over
// detrended residuals. An alarm trails the change it detects, so the event
// is anchored at the onset of the accumulator's current run, the standard
// CUSUM change-time estimate. Crossings must also pass the shared
// trend-change gate at that onset, and both accumulators restart from zero
// after every emitted event.
func detectCUSUM(points []series.Point, values []float64, o Options) []Event {
	n := len(values)
	w := o.WindowSize

	resid := stats.Detrend(values)
	residMean := stats.Mean(resid)
	residStd := stats.StdDev(resid)

	threshold := o.Threshold
	if threshold <= 0 {
		threshold = 4 * residStd
	}
	delta := o.Delta
	if delta <= 0 {
		delta = 0.5 * residStd
	}
	if threshold < stats.Epsilon {
		return nil
	}
	gate := o.TrendGate
	if gate <= 0 {
		gate = 4 * stats.NoiseStdDev(resid) / float64(w)
	}

	residIdx := stats.NewIndex(resid)
	rawIdx := stats.NewIndex(values)

	var events []Event
	sPos, sNeg := 0.0, 0.0
	posOnset, negOnset := 0, 0
	for i, r := range resid {
		if sPos == 0 {
			posOnset = i
		}
		if sNeg == 0 {
			negOnset = i
		}
		sPos = math.Max(0, sPos+r-residMean-delta)
		sNeg = math.Min(0, sNeg+r-residMean+delta)

		excess := math.Max(sPos, -sNeg)
		if excess <= threshold {
			continue
		}

		typ := LevelIncrease
		onset := posOnset
		if -sNeg > sPos {
			typ = LevelDecrease
			onset = negOnset
		}
		// the gate needs full flanking windows to say anything
		if onset < w || onset+w > n {
			continue
		}

		beforeTrend, afterTrend := flankSlopes(residIdx, onset, w)
		if math.Abs(afterTrend-beforeTrend) <= gate {
			continue
		}

		lo := onset - w
		if lo < 0 {
			lo = 0
		}
		hi := onset + w
		if hi > n {
			hi = n
		}
		events = append(events, Event{
			Position:      points[onset].Position,
			Value:         points[onset].Value,
			OriginalIndex: points[onset].OriginalIndex,
			Confidence:    scaledConfidence(excess / threshold),
			Algorithm:     CUSUM,
			Type:          typ,
			Before: SegmentStats{
				Mean:  rawIdx.RangeMean(lo, onset),
				Slope: beforeTrend,
			},
			After: SegmentStats{
				Mean:  rawIdx.RangeMean(onset, hi),
				Slope: afterTrend,
			},
		})

		// classic CUSUM restart
		sPos, sNeg = 0, 0
	}
	return events
}

package detect

import (
	"math"

	"shiftwatch/internal/series"
	"shiftwatch/internal/stats"
)

const (
	// peltMaxCandidates caps the candidate previous-change-points examined
	// per step. The cap trades PELT's exactness for bounded runtime.
	peltMaxCandidates = 50
	// peltDownsampleAbove triggers a fixed-stride pre-downsample before
	// the dynamic program runs.
	peltDownsampleAbove = 1000
	// peltMeanShiftFloor separates mean-shift events from pure variance
	// changes, in units of global standard deviation.
	peltMeanShiftFloor = 0.25
)

// detectPELT runs the cost-bounded approximate PELT dynamic program.
// Segment cost is variance times length, O(1) per query via prefix sums.
// Candidate split points are strided so no step examines more than fifty,
// and series beyond a thousand points are pre-downsampled with indices
// remapped afterwards.
func detectPELT(points []series.Point, values []float64, o Options) []Event {
	vals := values
	skip := 1
	if len(values) > peltDownsampleAbove {
		skip = len(values)/peltDownsampleAbove + 1
		vals = make([]float64, 0, len(values)/skip+1)
		for i := 0; i < len(values); i += skip {
			vals = append(vals, values[i])
		}
	}

	m := len(vals)
	minLen := o.MinSegmentLength
	if m < 2*minLen {
		return nil
	}
	idx := stats.NewIndex(vals)
	globalVar := idx.RangeVariance(0, m)

	penalty := o.Penalty
	if penalty <= 0 {
		penalty = 2 * globalVar * math.Log(float64(m))
	}
	if penalty < stats.Epsilon {
		return nil
	}

	const inf = math.MaxFloat64
	cost := make([]float64, m+1)
	prev := make([]int, m+1)
	cost[0] = -penalty
	for t := 1; t <= m; t++ {
		cost[t] = inf
	}

	for t := minLen; t <= m; t++ {
		last := t - minLen
		stride := 1
		if count := last + 1; count > peltMaxCandidates {
			stride = (count + peltMaxCandidates - 1) / peltMaxCandidates
		}
		for s := 0; s <= last; s += stride {
			if cost[s] == inf {
				continue
			}
			if v := cost[s] + idx.SegmentCost(s, t) + penalty; v < cost[t] {
				cost[t] = v
				prev[t] = s
			}
		}
	}
	if cost[m] == inf {
		return nil
	}

	var boundaries []int
	for t := m; t > 0; t = prev[t] {
		if s := prev[t]; s > 0 {
			boundaries = append(boundaries, s)
		}
	}
	// backtracking walks tail-first
	reverseInts(boundaries)

	globalStd := math.Sqrt(globalVar)
	rawIdx := stats.NewIndex(values)
	n := len(values)
	w := o.WindowSize

	events := make([]Event, 0, len(boundaries))
	for _, b := range boundaries {
		i := b * skip
		if i >= n {
			i = n - 1
		}
		lo := i - w
		if lo < 0 {
			lo = 0
		}
		hi := i + w
		if hi > n {
			hi = n
		}
		beforeMean := rawIdx.RangeMean(lo, i)
		afterMean := rawIdx.RangeMean(i, hi)
		beforeSlope, afterSlope := flankSlopes(rawIdx, i, w)

		shift := math.Abs(afterMean-beforeMean) / (globalStd + stats.Epsilon)
		typ := VarianceChange
		switch {
		case shift < peltMeanShiftFloor:
			// boundary driven by spread, not level
		case afterMean > beforeMean:
			typ = LevelIncrease
		default:
			typ = LevelDecrease
		}

		events = append(events, Event{
			Position:      points[i].Position,
			Value:         points[i].Value,
			OriginalIndex: points[i].OriginalIndex,
			Confidence:    scaledConfidence(shift),
			Algorithm:     PELT,
			Type:          typ,
			Before: SegmentStats{
				Mean:     beforeMean,
				Slope:    beforeSlope,
				Variance: rawIdx.RangeVariance(lo, i),
			},
			After: SegmentStats{
				Mean:     afterMean,
				Slope:    afterSlope,
				Variance: rawIdx.RangeVariance(i, hi),
			},
		})
	}
	return events
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

package detect

import (
	"math"

	"shiftwatch/internal/series"
	"shiftwatch/internal/stats"
)

const (
	// trendMaxCandidates bounds the number of candidate indices examined,
	// striding over large series.
	trendMaxCandidates = 500
	// trendNeighborhood is the half-width of the extremum confirmation
	// window.
	trendNeighborhood = 10
)

// detectTrend compares local regression slopes in the windows flanking each
// candidate index, striding so that large series stay bounded in cost.
// Flagged points are classified against a bounded neighborhood and
// consolidated so only the strongest event per cluster survives.
func detectTrend(points []series.Point, values []float64, o Options) []Event {
	n := len(values)
	w := o.WindowSize
	if n < 2*w {
		return nil
	}

	idx := stats.NewIndex(values)

	stride := 1
	if count := n - 2*w; count > trendMaxCandidates {
		stride = count/trendMaxCandidates + 1
	}

	threshold := o.TrendThreshold
	if threshold <= 0 {
		// derive the threshold from the observed slope-difference
		// distribution so it tracks the scale of the series
		var diffs stats.Welford
		for i := w; i+w <= n; i += stride {
			diffs.Add(math.Abs(idx.RangeSlope(i, i+w) - idx.RangeSlope(i-w, i)))
		}
		threshold = diffs.Mean() + 2*diffs.StdDev()
	}
	if threshold < stats.Epsilon {
		return nil
	}

	var cands []candidate
	for i := w; i+w <= n; i += stride {
		beforeTrend := idx.RangeSlope(i-w, i)
		afterTrend := idx.RangeSlope(i, i+w)
		diff := afterTrend - beforeTrend
		if math.Abs(diff) <= threshold {
			continue
		}

		cands = append(cands, candidate{
			idx: i,
			ev: Event{
				Position:      points[i].Position,
				Value:         points[i].Value,
				OriginalIndex: points[i].OriginalIndex,
				Confidence:    scaledConfidence(math.Abs(diff) / threshold),
				Algorithm:     Trend,
				Type:          classifyTrend(values, i, beforeTrend, afterTrend, threshold),
				Before: SegmentStats{
					Mean:  idx.RangeMean(i-w, i),
					Slope: beforeTrend,
				},
				After: SegmentStats{
					Mean:  idx.RangeMean(i, i+w),
					Slope: afterTrend,
				},
			},
		})
	}
	return consolidate(cands, w)
}

// classifyTrend names the kind of slope change at i, confirming peak and
// valley calls against the surrounding values.
func classifyTrend(values []float64, i int, beforeTrend, afterTrend, threshold float64) ChangeType {
	flat := threshold / 2
	switch {
	case beforeTrend > flat && afterTrend < -flat:
		if isNeighborhoodMax(values, i) {
			return Peak
		}
		return TrendChange
	case beforeTrend < -flat && afterTrend > flat:
		if isNeighborhoodMin(values, i) {
			return Valley
		}
		return TrendChange
	case math.Abs(beforeTrend) <= flat && afterTrend > flat:
		return StartIncrease
	case math.Abs(beforeTrend) <= flat && afterTrend < -flat:
		return StartDecrease
	default:
		return TrendChange
	}
}

func isNeighborhoodMax(values []float64, i int) bool {
	lo, hi := neighborhoodBounds(len(values), i)
	for j := lo; j < hi; j++ {
		if values[j] > values[i] {
			return false
		}
	}
	return true
}

func isNeighborhoodMin(values []float64, i int) bool {
	lo, hi := neighborhoodBounds(len(values), i)
	for j := lo; j < hi; j++ {
		if values[j] < values[i] {
			return false
		}
	}
	return true
}

func neighborhoodBounds(n, i int) (lo, hi int) {
	lo = i - trendNeighborhood
	if lo < 0 {
		lo = 0
	}
	hi = i + trendNeighborhood + 1
	if hi > n {
		hi = n
	}
	return lo, hi
}

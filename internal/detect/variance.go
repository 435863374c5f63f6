package detect

import (
	"math"

	"shiftwatch/internal/series"
	"shiftwatch/internal/stats"
)

// detectVariance compares local variance in fixed windows before and after
// each candidate index via the log of their ratio. Confidence weighs the
// ratio's size against how much of the global variance the windows carry,
// so a volatility flip in a negligible corner of the series scores lower.
func detectVariance(points []series.Point, values []float64, o Options) []Event {
	n := len(values)
	w := o.VarianceWindow
	if n < 2*w {
		return nil
	}

	idx := stats.NewIndex(values)
	globalVar := idx.RangeVariance(0, n)
	logThreshold := math.Log(o.VarianceThreshold)

	var cands []candidate
	for i := w; i+w <= n; i++ {
		beforeVar := idx.RangeVariance(i-w, i)
		afterVar := idx.RangeVariance(i, i+w)
		logRatio := math.Log((afterVar + stats.Epsilon) / (beforeVar + stats.Epsilon))
		if math.Abs(logRatio) <= logThreshold {
			continue
		}

		typ := IncreaseVolatility
		if logRatio < 0 {
			typ = DecreaseVolatility
		}
		significance := math.Abs(logRatio) / logThreshold
		weight := math.Max(beforeVar, afterVar) / (globalVar + stats.Epsilon)
		if weight > 1 {
			weight = 1
		}
		confidence := clampConfidence(scaledConfidence(significance) * (0.5 + 0.5*weight))

		cands = append(cands, candidate{
			idx: i,
			ev: Event{
				Position:      points[i].Position,
				Value:         points[i].Value,
				OriginalIndex: points[i].OriginalIndex,
				Confidence:    confidence,
				Algorithm:     Variance,
				Type:          typ,
				Before: SegmentStats{
					Mean:     idx.RangeMean(i-w, i),
					Variance: beforeVar,
				},
				After: SegmentStats{
					Mean:     idx.RangeMean(i, i+w),
					Variance: afterVar,
				},
			},
		})
	}
	return consolidate(cands, w)
}

package detect

import (
	"sort"

	"shiftwatch/internal/series"
	"shiftwatch/internal/stats"
)

// binsegMinGain is the minimum variance-reduction ratio a split must achieve
// to be accepted.
const binsegMinGain = 0.1

// detectBinarySegmentation greedily splits [0, n) at the index minimizing the
// combined within-segment variance, recursing into both halves via an
// explicit stack. A split is accepted only when it removes more than ten
// percent of the parent segment's variance.
func detectBinarySegmentation(points []series.Point, values []float64, o Options) []Event {
	n := len(values)
	minSeg := o.MinSegmentSize
	idx := stats.NewIndex(values)

	type span struct{ s, e int }
	stack := []span{{0, n}}

	var events []Event
	for len(stack) > 0 {
		sp := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if sp.e-sp.s < 2*minSeg {
			continue
		}
		// length-weighted cost keeps the score monotone under splits,
		// which plain variance sums are not
		segCost := idx.SegmentCost(sp.s, sp.e)
		if segCost < stats.Epsilon {
			continue
		}

		bestScore := segCost
		bestSplit := -1
		for k := sp.s + minSeg; k <= sp.e-minSeg; k++ {
			score := idx.SegmentCost(sp.s, k) + idx.SegmentCost(k, sp.e)
			if score < bestScore {
				bestScore = score
				bestSplit = k
			}
		}
		if bestSplit < 0 {
			continue
		}
		confidence := 1 - bestScore/segCost
		if confidence <= binsegMinGain {
			continue
		}

		beforeMean := idx.RangeMean(sp.s, bestSplit)
		afterMean := idx.RangeMean(bestSplit, sp.e)
		typ := LevelIncrease
		if afterMean < beforeMean {
			typ = LevelDecrease
		}
		events = append(events, Event{
			Position:      points[bestSplit].Position,
			Value:         points[bestSplit].Value,
			OriginalIndex: points[bestSplit].OriginalIndex,
			Confidence:    clampConfidence(confidence),
			Algorithm:     BinarySegmentation,
			Type:          typ,
			Before: SegmentStats{
				Mean:     beforeMean,
				Variance: idx.RangeVariance(sp.s, bestSplit),
			},
			After: SegmentStats{
				Mean:     afterMean,
				Variance: idx.RangeVariance(bestSplit, sp.e),
			},
		})

		stack = append(stack, span{sp.s, bestSplit}, span{bestSplit, sp.e})
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].OriginalIndex < events[j].OriginalIndex
	})
	return events
}

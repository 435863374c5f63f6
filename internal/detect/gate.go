package detect

import (
	"sort"

	"shiftwatch/internal/stats"
)

// flankSlopes returns the local regression slopes of the windows flanking i.
// Both windows include the boundary point itself, so a level shift at i bends
// the before-window fit even when each side is perfectly linear.
func flankSlopes(idx *stats.Index, i, w int) (before, after float64) {
	s := i - w
	if s < 0 {
		s = 0
	}
	e := i + w + 1
	if e > idx.Len() {
		e = idx.Len()
	}
	before = idx.RangeSlope(s, i+1)
	after = idx.RangeSlope(i, e)
	return before, after
}

// clampConfidence bounds a confidence score to [0, 1].
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scaledConfidence maps a threshold-relative ratio to [0, 1], saturating at
// three times the threshold.
func scaledConfidence(ratio float64) float64 {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 3 {
		ratio = 3
	}
	return ratio / 3
}

// candidate pairs an event with its index into the sampled series so that
// cluster consolidation can reason about distance.
type candidate struct {
	idx int
	ev  Event
}

// consolidate collapses candidates closer than minGap into the single
// highest-confidence event per cluster, returning events ordered by index.
func consolidate(cands []candidate, minGap int) []Event {
	if len(cands) == 0 {
		return nil
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].idx < cands[j].idx })

	events := make([]Event, 0, len(cands))
	best := cands[0]
	for _, c := range cands[1:] {
		if c.idx-best.idx < minGap {
			if c.ev.Confidence > best.ev.Confidence {
				best = c
			}
			continue
		}
		events = append(events, best.ev)
		best = c
	}
	events = append(events, best.ev)
	return events
}

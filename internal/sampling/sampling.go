package sampling

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"shiftwatch/internal/series"
)

// Method selects the reduction strategy applied to an oversized series.
type Method int

const (
	// Uniform picks points at an equal stride across the series.
	Uniform Method = iota
	// Systematic is uniform with a randomized starting phase.
	Systematic
	// Stratified emits the middle element of equal-width index buckets.
	Stratified
	// PeakPreserving retains strict local extrema and edges before
	// filling the remaining budget uniformly.
	PeakPreserving
)

// ParseMethod maps a config string onto a Method. Unknown names are an error.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "uniform":
		return Uniform, nil
	case "systematic":
		return Systematic, nil
	case "stratified":
		return Stratified, nil
	case "peak_preserving", "peak-preserving":
		return PeakPreserving, nil
	default:
		return 0, fmt.Errorf("sampling: unknown method %q", name)
	}
}

// String returns the canonical config name of the method.
func (m Method) String() string {
	switch m {
	case Uniform:
		return "uniform"
	case Systematic:
		return "systematic"
	case Stratified:
		return "stratified"
	case PeakPreserving:
		return "peak_preserving"
	default:
		return "unknown"
	}
}

// Options tune a Sample call.
type Options struct {
	// MaxPoints bounds the output size. Values below 2 fall back to 2.
	MaxPoints int
	// Method selects the reduction strategy.
	Method Method
	// PreserveEdges forces the first and last original point into the output.
	PreserveEdges bool
	// Seed fixes the randomized phase used by the systematic method so runs
	// are reproducible. Zero means derive a seed from the wall clock.
	Seed int64
}

// Sampled is the bounded working set handed to the detection engine.
// Immutable once produced; each detection call owns its own copy.
type Sampled struct {
	Points       []series.Point
	OriginalSize int
	SampledSize  int
	Method       Method
	Reduced      bool
}

// Sample reduces points to at most opts.MaxPoints while preserving salient
// shape. When the input already fits the budget it is passed through
// unchanged with Reduced=false.
func Sample(points []series.Point, opts Options) Sampled {
	n := len(points)
	if opts.MaxPoints < 2 {
		opts.MaxPoints = 2
	}
	if n <= opts.MaxPoints {
		return Sampled{
			Points:       points,
			OriginalSize: n,
			SampledSize:  n,
			Method:       opts.Method,
			Reduced:      false,
		}
	}

	var picked []int
	switch opts.Method {
	case Systematic:
		picked = systematicIndices(n, opts.MaxPoints, opts.Seed)
	case Stratified:
		picked = stratifiedIndices(n, opts.MaxPoints)
	case PeakPreserving:
		picked = peakPreservingIndices(points, opts.MaxPoints)
	default:
		picked = uniformIndices(n, opts.MaxPoints, opts.PreserveEdges)
	}

	if opts.PreserveEdges {
		picked = withEdges(picked, n)
	}

	out := make([]series.Point, len(picked))
	for i, idx := range picked {
		out[i] = points[idx]
	}
	return Sampled{
		Points:       out,
		OriginalSize: n,
		SampledSize:  len(out),
		Method:       opts.Method,
		Reduced:      true,
	}
}

func uniformIndices(n, maxPoints int, preserveEdges bool) []int {
	step := float64(n) / float64(maxPoints)
	picked := make([]int, 0, maxPoints)
	if preserveEdges {
		picked = append(picked, 0)
		for i := 1; i < maxPoints-1; i++ {
			idx := int(math.Round(float64(i) * step))
			if idx >= n-1 {
				idx = n - 2
			}
			picked = append(picked, idx)
		}
		picked = append(picked, n-1)
		return dedupeSorted(picked)
	}
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * step)
		if idx >= n {
			idx = n - 1
		}
		picked = append(picked, idx)
	}
	return dedupeSorted(picked)
}

func systematicIndices(n, maxPoints int, seed int64) []int {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	step := float64(n) / float64(maxPoints)
	phase := rng.Float64() * step
	picked := make([]int, 0, maxPoints)
	for i := 0; i < maxPoints; i++ {
		idx := int(phase + float64(i)*step)
		if idx >= n {
			break
		}
		picked = append(picked, idx)
	}
	return dedupeSorted(picked)
}

func stratifiedIndices(n, maxPoints int) []int {
	width := float64(n) / float64(maxPoints)
	picked := make([]int, 0, maxPoints)
	for i := 0; i < maxPoints; i++ {
		lo := float64(i) * width
		mid := int(lo + width/2)
		if mid >= n {
			mid = n - 1
		}
		picked = append(picked, mid)
	}
	return dedupeSorted(picked)
}

// peakPreservingIndices retains strict local maxima and minima plus both
// edges. When extrema alone exceed the budget, peaks win over valleys and
// both are truncated in scan order. Leftover budget is filled with a uniform
// stride over the indices not already selected.
func peakPreservingIndices(points []series.Point, maxPoints int) []int {
	n := len(points)
	var peaks, valleys []int
	for i := 1; i < n-1; i++ {
		prev, cur, next := points[i-1].Value, points[i].Value, points[i+1].Value
		switch {
		case cur > prev && cur > next:
			peaks = append(peaks, i)
		case cur < prev && cur < next:
			valleys = append(valleys, i)
		}
	}

	selected := map[int]bool{0: true, n - 1: true}
	budget := maxPoints - len(selected)
	for _, idx := range peaks {
		if budget <= 0 {
			break
		}
		if !selected[idx] {
			selected[idx] = true
			budget--
		}
	}
	for _, idx := range valleys {
		if budget <= 0 {
			break
		}
		if !selected[idx] {
			selected[idx] = true
			budget--
		}
	}

	if budget > 0 {
		step := float64(n) / float64(budget+1)
		for i := 1; i <= budget; i++ {
			idx := int(float64(i) * step)
			if idx >= n {
				idx = n - 1
			}
			// nudge forward to the nearest unselected index
			for idx < n && selected[idx] {
				idx++
			}
			if idx < n {
				selected[idx] = true
			}
		}
	}

	picked := make([]int, 0, len(selected))
	for idx := range selected {
		picked = append(picked, idx)
	}
	sort.Ints(picked)
	return picked
}

// withEdges forces the first and last original index into the selection by
// substituting the outermost picks, so the output size never grows beyond
// the sampling budget.
func withEdges(picked []int, n int) []int {
	if len(picked) < 2 {
		return []int{0, n - 1}
	}
	picked[0] = 0
	picked[len(picked)-1] = n - 1
	return dedupeSorted(picked)
}

func dedupeSorted(picked []int) []int {
	sort.Ints(picked)
	out := picked[:0]
	for i, idx := range picked {
		if i == 0 || idx != picked[i-1] {
			out = append(out, idx)
		}
	}
	return out
}

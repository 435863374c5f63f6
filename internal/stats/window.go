package stats

import "math"

// Index precomputes prefix sums over a series so that range mean, range
// variance, and least-squares fits against the integer index are all O(1)
// per query. Every detector shares one Index per invocation instead of
// rescanning windows.
type Index struct {
	n   int
	y   []float64 // prefix sum of values
	yy  []float64 // prefix sum of squared values
	x   []float64 // prefix sum of indices
	xx  []float64 // prefix sum of squared indices
	xy  []float64 // prefix sum of index*value
}

// NewIndex builds the prefix sums for values.
func NewIndex(values []float64) *Index {
	n := len(values)
	idx := &Index{
		n:  n,
		y:  make([]float64, n+1),
		yy: make([]float64, n+1),
		x:  make([]float64, n+1),
		xx: make([]float64, n+1),
		xy: make([]float64, n+1),
	}
	for i, v := range values {
		fi := float64(i)
		idx.y[i+1] = idx.y[i] + v
		idx.yy[i+1] = idx.yy[i] + v*v
		idx.x[i+1] = idx.x[i] + fi
		idx.xx[i+1] = idx.xx[i] + fi*fi
		idx.xy[i+1] = idx.xy[i] + fi*v
	}
	return idx
}

// Len returns the length of the indexed series.
func (idx *Index) Len() int { return idx.n }

// RangeMean returns the mean of values[s:e].
func (idx *Index) RangeMean(s, e int) float64 {
	if e <= s {
		return 0
	}
	return (idx.y[e] - idx.y[s]) / float64(e-s)
}

// RangeVariance returns the population variance of values[s:e].
func (idx *Index) RangeVariance(s, e int) float64 {
	n := float64(e - s)
	if n < 2 {
		return 0
	}
	sum := idx.y[e] - idx.y[s]
	sumSq := idx.yy[e] - idx.yy[s]
	v := (sumSq - sum*sum/n) / n
	if v < 0 {
		// floating-point cancellation on near-constant windows
		return 0
	}
	return v
}

// SegmentCost returns variance*length over values[s:e], the cost used by
// the segmentation detectors. O(1) via the same prefix differences.
func (idx *Index) SegmentCost(s, e int) float64 {
	n := float64(e - s)
	if n < 1 {
		return 0
	}
	sum := idx.y[e] - idx.y[s]
	sumSq := idx.yy[e] - idx.yy[s]
	c := sumSq - sum*sum/n
	if c < 0 {
		return 0
	}
	return c
}

// RangeFit returns the least-squares slope and intercept of values[s:e)
// against the global integer index as x.
func (idx *Index) RangeFit(s, e int) (slope, intercept float64) {
	n := float64(e - s)
	if n < 2 {
		return 0, idx.RangeMean(s, e)
	}
	sumX := idx.x[e] - idx.x[s]
	sumY := idx.y[e] - idx.y[s]
	sumXX := idx.xx[e] - idx.xx[s]
	sumXY := idx.xy[e] - idx.xy[s]
	denom := n*sumXX - sumX*sumX
	if math.Abs(denom) < Epsilon {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// RangeSlope returns just the slope of the fit over values[s:e].
func (idx *Index) RangeSlope(s, e int) float64 {
	slope, _ := idx.RangeFit(s, e)
	return slope
}

// Detrend fits one line over the whole series and returns the residuals.
// Mean-stationary residuals keep a steady trend from masquerading as a
// step change in the mean-shift detectors.
func Detrend(values []float64) []float64 {
	residuals := make([]float64, len(values))
	if len(values) < 2 {
		copy(residuals, values)
		return residuals
	}
	idx := NewIndex(values)
	slope, intercept := idx.RangeFit(0, len(values))
	for i, v := range values {
		residuals[i] = v - (slope*float64(i) + intercept)
	}
	return residuals
}

// Rolling is a fixed-capacity sliding window with O(1) push, mean, and
// standard deviation. Used for the EWMA prediction-error window.
type Rolling struct {
	buf   []float64
	head  int
	count int
	sum   float64
	sumSq float64
}

// NewRolling creates a rolling window holding at most capacity values.
func NewRolling(capacity int) *Rolling {
	if capacity < 1 {
		capacity = 1
	}
	return &Rolling{buf: make([]float64, capacity)}
}

// Push appends a value, evicting the oldest once the window is full.
func (r *Rolling) Push(v float64) {
	if r.count == len(r.buf) {
		old := r.buf[r.head]
		r.sum -= old
		r.sumSq -= old * old
	} else {
		r.count++
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	r.sum += v
	r.sumSq += v * v
}

// Count returns the number of values currently held.
func (r *Rolling) Count() int { return r.count }

// Mean returns the mean of the values currently held.
func (r *Rolling) Mean() float64 {
	if r.count == 0 {
		return 0
	}
	return r.sum / float64(r.count)
}

// StdDev returns the population standard deviation of the window.
func (r *Rolling) StdDev() float64 {
	if r.count < 2 {
		return 0
	}
	n := float64(r.count)
	v := (r.sumSq - r.sum*r.sum/n) / n
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

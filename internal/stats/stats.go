package stats

import (
	"math"
	"sort"
)

// Epsilon guards divisions in ratio and variance computations.
const Epsilon = 1e-10

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance of values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// NoiseStdDev estimates the noise level of a series from the median
// absolute successive difference. Unlike the plain standard deviation the
// estimate is robust to level shifts and trends, which is what the
// trend-change gates need: they must reject noise, not structure.
func NoiseStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = math.Abs(values[i] - values[i-1])
	}
	sort.Float64s(diffs)

	var median float64
	mid := len(diffs) / 2
	if len(diffs)%2 == 1 {
		median = diffs[mid]
	} else {
		median = (diffs[mid-1] + diffs[mid]) / 2
	}
	// |d| of Gaussian differences is half-normal with scale sigma*sqrt(2);
	// its median is sigma*sqrt(2)*0.6745
	return median / 0.9539
}

// Welford maintains running mean and variance in a single pass.
type Welford struct {
	count int
	mean  float64
	m2    float64
}

// Add incorporates a new observation.
func (w *Welford) Add(x float64) {
	w.count++
	delta := x - w.mean
	w.mean += delta / float64(w.count)
	w.m2 += delta * (x - w.mean)
}

// Count returns the number of observations added.
func (w *Welford) Count() int { return w.count }

// Mean returns the running mean.
func (w *Welford) Mean() float64 { return w.mean }

// Variance returns the running population variance.
func (w *Welford) Variance() float64 {
	if w.count < 2 {
		return 0
	}
	return w.m2 / float64(w.count)
}

// StdDev returns the running population standard deviation.
func (w *Welford) StdDev() float64 {
	return math.Sqrt(w.Variance())
}

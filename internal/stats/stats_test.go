package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testValues() []float64 {
	values := make([]float64, 40)
	for i := range values {
		values[i] = math.Sin(float64(i)*0.7)*3 + float64(i)*0.2
	}
	return values
}

func TestIndexMatchesNaiveRangeQueries(t *testing.T) {
	values := testValues()
	idx := NewIndex(values)

	ranges := [][2]int{{0, 40}, {5, 15}, {12, 13}, {20, 39}, {0, 2}}
	for _, r := range ranges {
		s, e := r[0], r[1]
		window := values[s:e]

		if got, want := idx.RangeMean(s, e), Mean(window); !almostEqual(got, want) {
			t.Fatalf("RangeMean(%d,%d) = %v, want %v", s, e, got, want)
		}
		if got, want := idx.RangeVariance(s, e), Variance(window); !almostEqual(got, want) {
			t.Fatalf("RangeVariance(%d,%d) = %v, want %v", s, e, got, want)
		}
	}
}

func TestRangeFitMatchesNaiveRegression(t *testing.T) {
	values := testValues()
	idx := NewIndex(values)

	s, e := 7, 31
	slope, intercept := idx.RangeFit(s, e)

	// naive least squares against the global index
	var sumX, sumY, sumXX, sumXY float64
	for i := s; i < e; i++ {
		x, y := float64(i), values[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}
	n := float64(e - s)
	wantSlope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	wantIntercept := (sumY - wantSlope*sumX) / n

	if !almostEqual(slope, wantSlope) {
		t.Fatalf("slope = %v, want %v", slope, wantSlope)
	}
	if !almostEqual(intercept, wantIntercept) {
		t.Fatalf("intercept = %v, want %v", intercept, wantIntercept)
	}
}

func TestDetrendRemovesLinearTrend(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 3.5 + 2.0*float64(i)
	}

	resid := Detrend(values)
	for i, r := range resid {
		if math.Abs(r) > 1e-6 {
			t.Fatalf("residual[%d] = %v, want ~0 for a pure line", i, r)
		}
	}
}

func TestRollingWindowEvicts(t *testing.T) {
	r := NewRolling(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		r.Push(v)
	}

	if r.Count() != 3 {
		t.Fatalf("count = %d, want 3", r.Count())
	}
	if got, want := r.Mean(), 4.0; !almostEqual(got, want) {
		t.Fatalf("mean = %v, want %v", got, want)
	}
	want := StdDev([]float64{3, 4, 5})
	if got := r.StdDev(); !almostEqual(got, want) {
		t.Fatalf("stddev = %v, want %v", got, want)
	}
}

func TestWelfordMatchesTwoPass(t *testing.T) {
	values := testValues()
	var w Welford
	for _, v := range values {
		w.Add(v)
	}

	if got, want := w.Mean(), Mean(values); !almostEqual(got, want) {
		t.Fatalf("mean = %v, want %v", got, want)
	}
	if got, want := w.Variance(), Variance(values); !almostEqual(got, want) {
		t.Fatalf("variance = %v, want %v", got, want)
	}
}

func TestSegmentCostIsVarianceTimesLength(t *testing.T) {
	values := testValues()
	idx := NewIndex(values)

	s, e := 4, 28
	want := Variance(values[s:e]) * float64(e-s)
	if got := idx.SegmentCost(s, e); !almostEqual(got, want) {
		t.Fatalf("SegmentCost(%d,%d) = %v, want %v", s, e, got, want)
	}
}

package sampling

import (
	"math"
	"testing"

	"shiftwatch/internal/series"
)

func makePoints(values []float64) []series.Point {
	points := make([]series.Point, len(values))
	for i, v := range values {
		points[i] = series.Point{Position: float64(i), Value: v, OriginalIndex: i}
	}
	return points
}

func rampPoints(n int) []series.Point {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	return makePoints(values)
}

func TestPassThroughWhenUnderBudget(t *testing.T) {
	points := rampPoints(50)
	got := Sample(points, Options{MaxPoints: 100, Method: Uniform})

	if got.Reduced {
		t.Fatal("series under budget must not be marked reduced")
	}
	if got.SampledSize != 50 || got.OriginalSize != 50 {
		t.Fatalf("sizes = %d/%d, want 50/50", got.SampledSize, got.OriginalSize)
	}
	if len(got.Points) != len(points) {
		t.Fatalf("points = %d, want %d", len(got.Points), len(points))
	}
}

func TestBudgetAndOrderForEveryMethod(t *testing.T) {
	points := rampPoints(997)
	for _, method := range []Method{Uniform, Systematic, Stratified, PeakPreserving} {
		got := Sample(points, Options{MaxPoints: 100, Method: method, Seed: 7})

		if !got.Reduced {
			t.Fatalf("%s: expected reduction", method)
		}
		if len(got.Points) > 101 {
			t.Fatalf("%s: %d points exceeds budget+1", method, len(got.Points))
		}
		for i := 1; i < len(got.Points); i++ {
			if got.Points[i].OriginalIndex <= got.Points[i-1].OriginalIndex {
				t.Fatalf("%s: original index order broken at %d", method, i)
			}
		}
	}
}

func TestPreserveEdgesRetainsEndpoints(t *testing.T) {
	points := rampPoints(500)
	for _, method := range []Method{Uniform, Systematic, Stratified, PeakPreserving} {
		got := Sample(points, Options{MaxPoints: 40, Method: method, PreserveEdges: true, Seed: 3})

		first := got.Points[0]
		last := got.Points[len(got.Points)-1]
		if first.OriginalIndex != 0 {
			t.Fatalf("%s: first point index = %d, want 0", method, first.OriginalIndex)
		}
		if last.OriginalIndex != 499 {
			t.Fatalf("%s: last point index = %d, want 499", method, last.OriginalIndex)
		}
	}
}

func TestSystematicSeededIsReproducible(t *testing.T) {
	points := rampPoints(1000)
	opts := Options{MaxPoints: 50, Method: Systematic, Seed: 42}

	a := Sample(points, opts)
	b := Sample(points, opts)

	if len(a.Points) != len(b.Points) {
		t.Fatalf("sizes differ: %d vs %d", len(a.Points), len(b.Points))
	}
	for i := range a.Points {
		if a.Points[i].OriginalIndex != b.Points[i].OriginalIndex {
			t.Fatalf("same seed produced different selection at %d", i)
		}
	}
}

func TestPeakPreservingRetainsGlobalMaximum(t *testing.T) {
	const n = 10000
	const spikeAt = 6917
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Sin(float64(i) * 0.013)
	}
	values[spikeAt] = 50

	got := Sample(makePoints(values), Options{MaxPoints: 2000, Method: PeakPreserving})

	for _, p := range got.Points {
		if p.OriginalIndex == spikeAt {
			return
		}
	}
	t.Fatalf("global maximum at %d was dropped", spikeAt)
}

func TestParseMethod(t *testing.T) {
	for _, name := range []string{"uniform", "systematic", "stratified", "peak_preserving"} {
		m, err := ParseMethod(name)
		if err != nil {
			t.Fatalf("ParseMethod(%q): %v", name, err)
		}
		if m.String() != name {
			t.Fatalf("round trip %q -> %q", name, m.String())
		}
	}
	if _, err := ParseMethod("bogus"); err == nil {
		t.Fatal("unknown method must be an error")
	}
}

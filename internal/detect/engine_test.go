package detect

import (
	"math"
	"testing"

	"shiftwatch/internal/sampling"
	"shiftwatch/internal/series"
)

// asSampled wraps raw values as an unreduced sampled series, the form every
// detector consumes.
func asSampled(values []float64) sampling.Sampled {
	points := make([]series.Point, len(values))
	for i, v := range values {
		points[i] = series.Point{Position: float64(i), Value: v, OriginalIndex: i}
	}
	return sampling.Sampled{
		Points:       points,
		OriginalSize: len(points),
		SampledSize:  len(points),
	}
}

func TestShortSeriesYieldsEmptyResult(t *testing.T) {
	short := asSampled([]float64{1, 5, 2, 8, 3, 9, 4, 7, 6})
	for _, algo := range Algorithms() {
		events, err := Detect(short, algo, Options{})
		if err != nil {
			t.Fatalf("%s: short series must not error: %v", algo, err)
		}
		if len(events) != 0 {
			t.Fatalf("%s: short series produced %d events", algo, len(events))
		}
	}
}

func TestFlatSeriesYieldsNoChangePoints(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 7.25
	}
	flat := asSampled(values)

	for _, algo := range Algorithms() {
		events, err := Detect(flat, algo, Options{})
		if err != nil {
			t.Fatalf("%s: flat series must not error: %v", algo, err)
		}
		if len(events) != 0 {
			t.Fatalf("%s: flat series produced %d false positives", algo, len(events))
		}
	}
}

func TestNonFiniteInputRejected(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i)
	}
	values[12] = math.NaN()

	if _, err := Detect(asSampled(values), MovingAverage, Options{}); err == nil {
		t.Fatal("NaN input must be rejected, not propagated")
	}

	values[12] = math.Inf(1)
	if _, err := Detect(asSampled(values), CUSUM, Options{}); err == nil {
		t.Fatal("Inf input must be rejected, not propagated")
	}
}

func TestUnknownAlgorithmFails(t *testing.T) {
	s := asSampled(compositeSeries())
	if _, err := Detect(s, Algorithm(99), Options{}); err == nil {
		t.Fatal("unknown algorithm must fail, not silently default")
	}
	if _, err := ParseAlgorithm("super_detector"); err == nil {
		t.Fatal("unknown algorithm name must fail to parse")
	}
}

// compositeSeries mixes a level shift, a spike, and a volatility change so
// every detector has something to find.
func compositeSeries() []float64 {
	values := make([]float64, 240)
	for i := range values {
		switch {
		case i < 80:
			values[i] = 10 + 0.3*math.Sin(float64(i))
		case i < 160:
			values[i] = 25 + 0.3*math.Sin(float64(i))
		default:
			values[i] = 25 + 4*math.Sin(float64(i)*1.7)
		}
	}
	values[40] = 19
	return values
}

func TestConfidenceAlwaysWithinUnitInterval(t *testing.T) {
	s := asSampled(compositeSeries())
	for _, algo := range Algorithms() {
		events, err := Detect(s, algo, Options{})
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		for _, ev := range events {
			if ev.Confidence < 0 || ev.Confidence > 1 {
				t.Fatalf("%s: confidence %v outside [0,1]", algo, ev.Confidence)
			}
			if ev.Algorithm != algo {
				t.Fatalf("%s: event tagged %s", algo, ev.Algorithm)
			}
		}
	}
}

func TestEventsOrderedByOriginalIndex(t *testing.T) {
	s := asSampled(compositeSeries())
	for _, algo := range Algorithms() {
		events, err := Detect(s, algo, Options{})
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		for i := 1; i < len(events); i++ {
			if events[i].OriginalIndex < events[i-1].OriginalIndex {
				t.Fatalf("%s: events out of order at %d", algo, i)
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	events := []Event{
		{Confidence: 0.5},
		{Confidence: 1.0},
	}
	s := Summarize(events, PELT, Options{Penalty: 9})

	if s.TotalChangePoints != 2 {
		t.Fatalf("total = %d, want 2", s.TotalChangePoints)
	}
	if math.Abs(s.AverageConfidence-0.75) > 1e-12 {
		t.Fatalf("average confidence = %v, want 0.75", s.AverageConfidence)
	}
	if s.Algorithm != PELT || s.Options.Penalty != 9 {
		t.Fatalf("summary did not carry algorithm/options: %+v", s)
	}

	empty := Summarize(nil, EWMA, Options{})
	if empty.TotalChangePoints != 0 || empty.AverageConfidence != 0 {
		t.Fatalf("empty summary = %+v", empty)
	}
}

package detect

import "testing"

// ripple returns base plus a small alternating ripple so the series is not
// perfectly flat.
func ripple(n int, base float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = base + 0.1
		if i%2 == 1 {
			values[i] = base - 0.1
		}
	}
	return values
}

func TestEWMADetectsSpike(t *testing.T) {
	values := ripple(30, 10)
	values[20] = 20

	events, err := Detect(asSampled(values), EWMA, Options{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("spike not detected")
	}

	ev := events[0]
	if ev.OriginalIndex != 20 {
		t.Fatalf("spike flagged at %d, want 20", ev.OriginalIndex)
	}
	if ev.Type != LevelIncrease {
		t.Fatalf("type = %s, want %s", ev.Type, LevelIncrease)
	}
	if ev.Confidence <= 0 || ev.Confidence > 1 {
		t.Fatalf("confidence = %v outside (0,1]", ev.Confidence)
	}
	if ev.After.Mean <= ev.Before.Mean {
		t.Fatalf("expected upward deviation, before %v after %v", ev.Before.Mean, ev.After.Mean)
	}
}

func TestEWMAQuietSeriesStaysQuiet(t *testing.T) {
	events, err := Detect(asSampled(ripple(60, 5)), EWMA, Options{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("ripple-only series produced %d events", len(events))
	}
}

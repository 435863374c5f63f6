package detect

import "testing"

func TestMovingAverageDetectsStepChange(t *testing.T) {
	values := make([]float64, 20)
	for i := 10; i < 20; i++ {
		values[i] = 10
	}

	events, err := Detect(asSampled(values), MovingAverage, Options{WindowSize: 3})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want exactly 1", len(events))
	}

	ev := events[0]
	if ev.OriginalIndex < 8 || ev.OriginalIndex > 12 {
		t.Fatalf("change point at %d, want near 10", ev.OriginalIndex)
	}
	if ev.Confidence <= 0.5 {
		t.Fatalf("confidence = %v, want > 0.5", ev.Confidence)
	}
	if ev.Type != LevelIncrease {
		t.Fatalf("type = %s, want %s", ev.Type, LevelIncrease)
	}
	if ev.After.Mean <= ev.Before.Mean {
		t.Fatalf("window means not increasing: before %v, after %v", ev.Before.Mean, ev.After.Mean)
	}
}

func TestMovingAverageIgnoresSteadyTrend(t *testing.T) {
	// a clean ramp detrends to nothing; flagging it would confuse trend
	// with a step change
	values := make([]float64, 60)
	for i := range values {
		values[i] = 2 * float64(i)
	}

	events, err := Detect(asSampled(values), MovingAverage, Options{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("steady trend produced %d spurious events", len(events))
	}
}

package detect

import "testing"

func TestCUSUMDetectsSustainedShift(t *testing.T) {
	values := make([]float64, 60)
	for i := 30; i < 60; i++ {
		values[i] = 10
	}

	events, err := Detect(asSampled(values), CUSUM, Options{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want exactly 1", len(events))
	}

	ev := events[0]
	if ev.OriginalIndex < 30 || ev.OriginalIndex > 38 {
		t.Fatalf("change point at %d, want shortly after 30", ev.OriginalIndex)
	}
	if ev.Type != LevelIncrease {
		t.Fatalf("type = %s, want %s", ev.Type, LevelIncrease)
	}
	if ev.Confidence <= 0 || ev.Confidence > 1 {
		t.Fatalf("confidence = %v outside (0,1]", ev.Confidence)
	}
}

func TestCUSUMAccumulatorsResetAfterEvent(t *testing.T) {
	// two separated shifts; without the classic restart the second one
	// would drown in the accumulated sum of the first
	values := make([]float64, 120)
	for i := 40; i < 80; i++ {
		values[i] = 10
	}
	for i := 80; i < 120; i++ {
		values[i] = -10
	}

	events, err := Detect(asSampled(values), CUSUM, Options{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) < 2 {
		t.Fatalf("got %d events, want at least the two true shifts", len(events))
	}

	var up, down bool
	for _, ev := range events {
		switch ev.Type {
		case LevelIncrease:
			up = true
		case LevelDecrease:
			down = true
		}
	}
	if !up || !down {
		t.Fatalf("expected both shift directions, got up=%v down=%v", up, down)
	}
}

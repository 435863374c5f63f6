package detect

import "testing"

func TestBinarySegmentationFindsSingleShift(t *testing.T) {
	values := make([]float64, 30)
	for i := 15; i < 30; i++ {
		values[i] = 10
	}

	events, err := Detect(asSampled(values), BinarySegmentation, Options{})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want exactly 1", len(events))
	}

	ev := events[0]
	if ev.OriginalIndex != 15 {
		t.Fatalf("split at %d, want the true boundary 15", ev.OriginalIndex)
	}
	if ev.Type != LevelIncrease {
		t.Fatalf("type = %s, want %s", ev.Type, LevelIncrease)
	}
	if ev.Confidence < 0.9 {
		t.Fatalf("confidence = %v, want near 1 for a clean split", ev.Confidence)
	}
	if ev.Before.Mean != 0 || ev.After.Mean != 10 {
		t.Fatalf("segment means = %v/%v, want 0/10", ev.Before.Mean, ev.After.Mean)
	}
}

func TestBinarySegmentationFindsBothShifts(t *testing.T) {
	values := make([]float64, 60)
	for i := 20; i < 40; i++ {
		values[i] = 10
	}

	events, err := Detect(asSampled(values), BinarySegmentation, Options{MinSegmentSize: 5})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].OriginalIndex != 20 || events[1].OriginalIndex != 40 {
		t.Fatalf("splits at %d and %d, want 20 and 40",
			events[0].OriginalIndex, events[1].OriginalIndex)
	}
	if events[0].Type != LevelIncrease || events[1].Type != LevelDecrease {
		t.Fatalf("types = %s/%s, want increase then decrease",
			events[0].Type, events[1].Type)
	}
}

func TestBinarySegmentationRespectsMinSegmentSize(t *testing.T) {
	// the true shift sits closer to the edge than the minimum segment
	// size allows, so any accepted split must stop at the constraint
	values := make([]float64, 30)
	for i := 27; i < 30; i++ {
		values[i] = 10
	}

	events, err := Detect(asSampled(values), BinarySegmentation, Options{MinSegmentSize: 5})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	for _, ev := range events {
		if ev.OriginalIndex < 5 || ev.OriginalIndex > 25 {
			t.Fatalf("split at %d violates min segment size 5", ev.OriginalIndex)
		}
	}
}

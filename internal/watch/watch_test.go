package watch

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"shiftwatch/internal/alerting"
	"shiftwatch/internal/config"
	"shiftwatch/internal/storage"
)

type fakeSeriesStore struct {
	points []storage.SeriesPoint
}

func (f *fakeSeriesStore) ListSeriesPoints(ctx context.Context) ([]storage.SeriesPoint, error) {
	return f.points, nil
}

func (f *fakeSeriesStore) ListRecentPoints(ctx context.Context, limit int) ([]storage.SeriesPoint, error) {
	if limit >= len(f.points) {
		return f.points, nil
	}
	return f.points[len(f.points)-limit:], nil
}

func (f *fakeSeriesStore) CountPoints(ctx context.Context) (int64, error) {
	return int64(len(f.points)), nil
}

type fakeAlertStore struct {
	records   []storage.AlertRecord
	latest    decimal.Decimal
	hasLatest bool
}

func (f *fakeAlertStore) InsertAlert(ctx context.Context, alert storage.AlertRecord) (storage.AlertRecord, error) {
	f.records = append(f.records, alert)
	return alert, nil
}

func (f *fakeAlertStore) ListRecentAlerts(ctx context.Context, limit int) ([]storage.AlertRecord, error) {
	return f.records, nil
}

func (f *fakeAlertStore) LatestAlertPosition(ctx context.Context, series string) (decimal.Decimal, bool, error) {
	return f.latest, f.hasLatest, nil
}

func (f *fakeAlertStore) DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error {
	return nil
}

type fakeNotifier struct {
	notes []alerting.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	f.notes = append(f.notes, note)
	return nil
}

func stepSeries() []storage.SeriesPoint {
	points := make([]storage.SeriesPoint, 20)
	for i := range points {
		value := 0
		if i >= 10 {
			value = 10
		}
		points[i] = storage.SeriesPoint{
			Position: decimal.NewFromInt(int64(i)),
			Value:    decimal.NewFromInt(int64(value)),
		}
	}
	return points
}

func watchConfig(minConfidence float64) *config.Config {
	cfg := &config.Config{}
	cfg.Database.SeriesTable = "demand"
	cfg.Sampling.MaxPoints = 2000
	cfg.Sampling.Method = "uniform"
	cfg.Detection.Algorithm = "moving_average"
	cfg.Detection.Options.WindowSize = 3
	cfg.Watch.Interval = time.Minute
	cfg.Watch.WindowPoints = 200
	cfg.Alerting.Enabled = true
	cfg.Alerting.MinConfidence = minConfidence
	cfg.Alerting.Channels = []string{"webhook"}
	return cfg
}

func TestProcessCycleAlertsOnStepChange(t *testing.T) {
	store := &fakeSeriesStore{points: stepSeries()}
	alerts := &fakeAlertStore{}
	notifier := &fakeNotifier{}

	svc, err := New(watchConfig(0.3), nil, store, alerts, notifier, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := svc.ProcessCycle(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessCycle failed: %v", err)
	}

	if len(notifier.notes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.notes))
	}
	note := notifier.notes[0]
	if note.ChangeType != "level_increase" {
		t.Fatalf("unexpected change type %q", note.ChangeType)
	}
	if note.Series != "demand" {
		t.Fatalf("unexpected series %q", note.Series)
	}

	if len(alerts.records) != 1 {
		t.Fatalf("expected 1 alert record, got %d", len(alerts.records))
	}
	if alerts.records[0].Algorithm != "moving_average" {
		t.Fatalf("unexpected algorithm %q", alerts.records[0].Algorithm)
	}
}

func TestProcessCycleSkipsLowConfidence(t *testing.T) {
	store := &fakeSeriesStore{points: stepSeries()}
	alerts := &fakeAlertStore{}
	notifier := &fakeNotifier{}

	svc, err := New(watchConfig(0.99), nil, store, alerts, notifier, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := svc.ProcessCycle(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessCycle failed: %v", err)
	}

	if len(notifier.notes) != 0 {
		t.Fatalf("low-confidence events should not notify, got %d", len(notifier.notes))
	}
}

func TestProcessCycleDeduplicatesByPosition(t *testing.T) {
	store := &fakeSeriesStore{points: stepSeries()}
	alerts := &fakeAlertStore{latest: decimal.NewFromInt(15), hasLatest: true}
	notifier := &fakeNotifier{}

	svc, err := New(watchConfig(0.3), nil, store, alerts, notifier, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := svc.ProcessCycle(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessCycle failed: %v", err)
	}

	if len(notifier.notes) != 0 {
		t.Fatalf("already-alerted positions should stay quiet, got %d notifications", len(notifier.notes))
	}
}

func TestNewRejectsUnknownAlgorithm(t *testing.T) {
	cfg := watchConfig(0.5)
	cfg.Detection.Algorithm = "psychic"
	if _, err := New(cfg, nil, &fakeSeriesStore{}, nil, nil, zerolog.Nop()); err == nil {
		t.Fatal("unknown algorithm should fail")
	}
}

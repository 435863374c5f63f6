package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"shiftwatch/internal/alerting"
	"shiftwatch/internal/detect"
	"shiftwatch/internal/sampling"
	"shiftwatch/internal/series"
)

// Simulate runs detection over a synthetic step series. With Notify set the
// strongest event also goes through the configured alert channel, which makes
// it a cheap end-to-end check of the delivery path.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	if opts.Points < 20 {
		return errors.New("--points must be at least 20")
	}
	if opts.ShiftAt <= 0 || opts.ShiftAt >= opts.Points {
		opts.ShiftAt = opts.Points / 2
	}

	algoName := a.Config.Detection.Algorithm
	if opts.Algorithm != "" {
		algoName = opts.Algorithm
	}
	algorithm, err := detect.ParseAlgorithm(algoName)
	if err != nil {
		return err
	}

	points := syntheticStep(opts.Points, opts.ShiftAt, opts.ShiftSize)
	sampled := sampling.Sample(points, sampling.Options{MaxPoints: opts.Points, Method: sampling.Uniform})

	events, err := detect.Detect(sampled, algorithm, a.Config.Detection.Options)
	if err != nil {
		return err
	}

	summary := detect.Summarize(events, algorithm, a.Config.Detection.Options)
	a.Logger.Info().
		Int("points", opts.Points).
		Int("shift_at", opts.ShiftAt).
		Float64("shift_size", opts.ShiftSize).
		Int("events", len(events)).
		Msg("simulation complete")

	printEventsTable(events, summary)

	if !opts.Notify {
		return nil
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}
	if len(events) == 0 {
		return errors.New("simulation produced no events to deliver")
	}

	best := events[0]
	for _, ev := range events[1:] {
		if ev.Confidence > best.Confidence {
			best = ev
		}
	}

	note := alerting.Notification{
		Series:     "simulated",
		Algorithm:  algorithm.String(),
		ChangeType: string(best.Type),
		Position:   decimal.NewFromFloat(best.Position),
		Confidence: decimal.NewFromFloat(best.Confidence),
		BeforeMean: decimal.NewFromFloat(best.Before.Mean),
		AfterMean:  decimal.NewFromFloat(best.After.Mean),
		DetectedAt: time.Now().UTC(),
		Channels:   a.Config.Alerting.Channels,
	}
	return notifier.Notify(ctx, note)
}

func syntheticStep(n, shiftAt int, shiftSize float64) []series.Point {
	if shiftSize == 0 {
		shiftSize = 5
	}

	rng := rand.New(rand.NewSource(1))
	points := make([]series.Point, n)
	for i := range points {
		value := rng.NormFloat64() * 0.5
		if i >= shiftAt {
			value += shiftSize
		}
		points[i] = series.Point{Position: float64(i), Value: value, OriginalIndex: i}
	}
	return points
}

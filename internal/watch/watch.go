package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"shiftwatch/internal/alerting"
	"shiftwatch/internal/config"
	"shiftwatch/internal/detect"
	"shiftwatch/internal/sampling"
	"shiftwatch/internal/scheduler"
	"shiftwatch/internal/series"
	"shiftwatch/internal/storage"
)

// Service orchestrates polling, detection, persistence, and alerting.
type Service struct {
	scheduler  *scheduler.Scheduler
	store      storage.SeriesStore
	alertStore storage.AlertStore
	notifier   alerting.Notifier
	logger     zerolog.Logger

	seriesName    string
	algorithm     detect.Algorithm
	detectOpts    detect.Options
	sampleOpts    sampling.Options
	windowPoints  int
	minConfidence float64
	channels      []string
	alertsOn      bool
	locker        storage.AdvisoryLocker
	lockKey       int64
}

// New constructs the watch service from runtime configuration.
func New(cfg *config.Config, sched *scheduler.Scheduler, store storage.SeriesStore, alertStore storage.AlertStore, notifier alerting.Notifier, logger zerolog.Logger) (*Service, error) {
	algorithm, err := detect.ParseAlgorithm(cfg.Detection.Algorithm)
	if err != nil {
		return nil, err
	}

	sampleOpts, err := cfg.SamplingOptions(0)
	if err != nil {
		return nil, err
	}

	var locker storage.AdvisoryLocker
	if l, ok := store.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:     sched,
		store:         store,
		alertStore:    alertStore,
		notifier:      notifier,
		logger:        logger.With().Str("component", "watch").Logger(),
		seriesName:    cfg.Database.SeriesTable,
		algorithm:     algorithm,
		detectOpts:    cfg.Detection.Options,
		sampleOpts:    sampleOpts,
		windowPoints:  cfg.Watch.WindowPoints,
		minConfidence: cfg.Alerting.MinConfidence,
		channels:      cfg.Alerting.Channels,
		alertsOn:      cfg.Alerting.Enabled,
		locker:        locker,
		lockKey:       cfg.Watch.AdvisoryLockKey,
	}, nil
}

// Run begins the aligned detection loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessCycle)
}

// ProcessCycle executes a single detection cycle.
func (s *Service) ProcessCycle(ctx context.Context, cycle time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("cycle", cycle).Msg("skip cycle because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.executeCycle(ctx, cycle)
}

func (s *Service) executeCycle(ctx context.Context, cycle time.Time) error {
	rows, err := s.store.ListRecentPoints(ctx, s.windowPoints)
	if err != nil {
		return fmt.Errorf("load series window: %w", err)
	}

	points := make([]series.Point, len(rows))
	for i, row := range rows {
		points[i] = series.Point{
			Position:      row.Position.InexactFloat64(),
			Value:         row.Value.InexactFloat64(),
			OriginalIndex: i,
		}
	}

	sampled := sampling.Sample(points, s.sampleOpts)

	events, err := detect.Detect(sampled, s.algorithm, s.detectOpts)
	if err != nil {
		return fmt.Errorf("detect change points: %w", err)
	}

	s.logger.Info().Time("cycle", cycle).
		Int("points", len(points)).
		Int("sampled", sampled.SampledSize).
		Int("events", len(events)).
		Str("algorithm", s.algorithm.String()).
		Msg("detection cycle complete")

	if !s.alertsOn || len(events) == 0 {
		return nil
	}

	return s.dispatchAlerts(ctx, cycle, events)
}

func (s *Service) dispatchAlerts(ctx context.Context, cycle time.Time, events []detect.Event) error {
	// previously alerted positions stay quiet; only genuinely new change
	// points should page anyone
	var floor decimal.Decimal
	var hasFloor bool
	if s.alertStore != nil {
		pos, ok, err := s.alertStore.LatestAlertPosition(ctx, s.seriesName)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load latest alert position")
		} else {
			floor, hasFloor = pos, ok
		}
	}

	for _, event := range events {
		if event.Confidence < s.minConfidence {
			continue
		}

		position := decimal.NewFromFloat(event.Position)
		if hasFloor && position.LessThanOrEqual(floor) {
			continue
		}

		note := alerting.Notification{
			Series:     s.seriesName,
			Algorithm:  s.algorithm.String(),
			ChangeType: string(event.Type),
			Position:   position,
			Confidence: decimal.NewFromFloat(event.Confidence),
			BeforeMean: decimal.NewFromFloat(event.Before.Mean),
			AfterMean:  decimal.NewFromFloat(event.After.Mean),
			DetectedAt: cycle,
			Channels:   s.channels,
		}

		if s.alertStore != nil {
			record := storage.AlertRecord{
				Series:     s.seriesName,
				Position:   position,
				ChangeType: string(event.Type),
				Confidence: note.Confidence,
				Algorithm:  s.algorithm.String(),
				Channels:   s.channels,
			}
			if _, err := s.alertStore.InsertAlert(ctx, record); err != nil {
				s.logger.Error().Err(err).
					Str("position", position.String()).
					Msg("failed to persist alert record")
			}
		}

		if s.notifier != nil {
			if err := s.notifier.Notify(ctx, note); err != nil {
				s.logger.Error().Err(err).
					Str("position", position.String()).
					Msg("failed to dispatch alert")
			}
		}
	}

	return nil
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}

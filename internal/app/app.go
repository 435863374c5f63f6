package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"shiftwatch/internal/alerting"
	"shiftwatch/internal/config"
	"shiftwatch/internal/scheduler"
	"shiftwatch/internal/storage"
	"shiftwatch/internal/watch"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Webhook.Enabled {
		cfg := a.Config.Alerting.Webhook
		return alerting.NewWebhookNotifier(cfg.URL, cfg.AuthToken, cfg.Timeout, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool, a.Config.Database)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Watch executes the long-running detection service against the database.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; watch requires database.dsn")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToStart: a.Config.Watch.AlignToBucket,
		StartupDelay: a.Config.Watch.StartupDelay,
	}, a.Logger)

	notifier := a.newNotifier()

	svc, err := watch.New(a.Config, sched, store, store, notifier, a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().Msg("starting watch service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch service terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch service stopped")
	return nil
}

// DetectOptions hold parameters for one-shot detection over a CSV file.
type DetectOptions struct {
	InputPath  string
	Algorithm  string
	MaxPoints  int
	JSONOutput bool
	CSVPath    string
	PNGPath    string
}

// SampleOptions hold parameters for the standalone sampling command.
type SampleOptions struct {
	InputPath  string
	OutputPath string
	MaxPoints  int
	Method     string
}

// ExportOptions hold parameters for charting the stored series.
type ExportOptions struct {
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// SimulateOptions configure the synthetic detection run.
type SimulateOptions struct {
	Points    int
	ShiftAt   int
	ShiftSize float64
	Algorithm string
	Notify    bool
}

package app

import (
	"context"
	"errors"

	"shiftwatch/internal/detect"
	"shiftwatch/internal/render"
	"shiftwatch/internal/sampling"
	"shiftwatch/internal/series"
)

// Export charts the stored series with detected change points annotated.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	rows, err := store.ListSeriesPoints(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		a.Logger.Info().Msg("no series points found for export")
		return nil
	}

	points := make([]series.Point, len(rows))
	for i, row := range rows {
		points[i] = series.Point{
			Position:      row.Position.InexactFloat64(),
			Value:         row.Value.InexactFloat64(),
			OriginalIndex: i,
		}
	}

	algorithm, err := detect.ParseAlgorithm(a.Config.Detection.Algorithm)
	if err != nil {
		return err
	}

	sampleOpts, err := a.Config.SamplingOptions(0)
	if err != nil {
		return err
	}
	sampled := sampling.Sample(points, sampleOpts)

	events, err := detect.Detect(sampled, algorithm, a.Config.Detection.Options)
	if err != nil {
		return err
	}

	maxPoints := opts.MaxPoints
	if maxPoints <= 0 {
		maxPoints = a.Config.Export.MaxDataPoints
	}
	plot := render.Downsample(points, maxPoints)

	a.Logger.Info().
		Int("total", len(points)).
		Int("exported", len(plot)).
		Int("events", len(events)).
		Msg("exporting series")

	if opts.CSVPath != "" {
		if err := render.WriteEventsCSV(opts.CSVPath, events); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		chartOpts := render.ChartOptions{
			Width:  a.Config.Export.ChartWidth,
			Height: a.Config.Export.ChartHeight,
			Title:  a.Config.Database.SeriesTable,
		}
		if err := render.WritePNG(opts.PNGPath, plot, events, chartOpts); err != nil {
			return err
		}
	}

	return nil
}

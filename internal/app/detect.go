package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"shiftwatch/internal/detect"
	"shiftwatch/internal/ingest"
	"shiftwatch/internal/render"
	"shiftwatch/internal/sampling"
	"shiftwatch/internal/series"
)

// Detect runs one-shot change-point detection over a CSV file.
func (a *App) Detect(ctx context.Context, opts DetectOptions) error {
	if opts.InputPath == "" {
		return errors.New("--input is required")
	}

	algoName := a.Config.Detection.Algorithm
	if opts.Algorithm != "" {
		algoName = opts.Algorithm
	}
	algorithm, err := detect.ParseAlgorithm(algoName)
	if err != nil {
		return err
	}

	points, err := a.readSeries(opts.InputPath)
	if err != nil {
		return err
	}

	sampleOpts, err := a.Config.SamplingOptions(opts.MaxPoints)
	if err != nil {
		return err
	}
	sampled := sampling.Sample(points, sampleOpts)

	events, err := detect.Detect(sampled, algorithm, a.Config.Detection.Options)
	if err != nil {
		return err
	}

	summary := detect.Summarize(events, algorithm, a.Config.Detection.Options)
	a.Logger.Info().
		Int("points", len(points)).
		Int("sampled", sampled.SampledSize).
		Bool("reduced", sampled.Reduced).
		Int("events", len(events)).
		Str("algorithm", algorithm.String()).
		Msg("detection complete")

	if opts.CSVPath != "" {
		if err := render.WriteEventsCSV(opts.CSVPath, events); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		plot := render.Downsample(points, a.Config.Export.MaxDataPoints)
		chartOpts := render.ChartOptions{
			Width:  a.Config.Export.ChartWidth,
			Height: a.Config.Export.ChartHeight,
			Title:  algorithm.String(),
		}
		if err := render.WritePNG(opts.PNGPath, plot, events, chartOpts); err != nil {
			return err
		}
	}

	if opts.JSONOutput {
		return printEventsJSON(events, summary)
	}
	printEventsTable(events, summary)
	return nil
}

func (a *App) readSeries(path string) ([]series.Point, error) {
	mode, err := ingest.ParsePositionMode(a.Config.Ingest.PositionMode)
	if err != nil {
		return nil, err
	}

	comma := ','
	if a.Config.Ingest.Comma != "" {
		comma = rune(a.Config.Ingest.Comma[0])
	}

	return ingest.ReadFile(path, ingest.Options{
		ValueColumn:    a.Config.Ingest.ValueColumn,
		PositionColumn: a.Config.Ingest.PositionColumn,
		Mode:           mode,
		HasHeader:      a.Config.Ingest.HasHeader,
		Comma:          comma,
	})
}

type detectOutput struct {
	Events  []detect.Event `json:"events"`
	Summary detect.Summary `json:"summary"`
}

func printEventsJSON(events []detect.Event, summary detect.Summary) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(detectOutput{Events: events, Summary: summary})
}

func printEventsTable(events []detect.Event, summary detect.Summary) {
	if len(events) == 0 {
		fmt.Fprintln(os.Stdout, "no change points detected")
		return
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Position\tIndex\tType\tConfidence\tBefore Mean\tAfter Mean")
	for _, ev := range events {
		fmt.Fprintf(
			writer,
			"%g\t%d\t%s\t%.3f\t%.4f\t%.4f\n",
			ev.Position,
			ev.OriginalIndex,
			ev.Type,
			ev.Confidence,
			ev.Before.Mean,
			ev.After.Mean,
		)
	}
	writer.Flush()

	fmt.Fprintf(os.Stdout, "\n%d change points, average confidence %.3f\n",
		summary.TotalChangePoints, summary.AverageConfidence)
}

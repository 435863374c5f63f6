package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"shiftwatch/internal/sampling"
)

// Sample reduces a CSV series to the configured point budget and writes the
// result back out as CSV.
func (a *App) Sample(ctx context.Context, opts SampleOptions) error {
	if opts.InputPath == "" {
		return errors.New("--input is required")
	}
	if opts.OutputPath == "" {
		return errors.New("--output is required")
	}

	points, err := a.readSeries(opts.InputPath)
	if err != nil {
		return err
	}

	sampleOpts, err := a.Config.SamplingOptions(opts.MaxPoints)
	if err != nil {
		return err
	}
	if opts.Method != "" {
		method, parseErr := sampling.ParseMethod(opts.Method)
		if parseErr != nil {
			return parseErr
		}
		sampleOpts.Method = method
	}

	sampled := sampling.Sample(points, sampleOpts)

	a.Logger.Info().
		Int("original", sampled.OriginalSize).
		Int("sampled", sampled.SampledSize).
		Bool("reduced", sampled.Reduced).
		Str("method", sampled.Method.String()).
		Msg("sampling complete")

	if err := writeSampledCSV(opts.OutputPath, sampled); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "wrote %d of %d points to %s\n",
		sampled.SampledSize, sampled.OriginalSize, opts.OutputPath)
	return nil
}

func writeSampledCSV(path string, sampled sampling.Sampled) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"position", "value", "original_index"}); err != nil {
		return err
	}
	for _, p := range sampled.Points {
		record := []string{
			strconv.FormatFloat(p.Position, 'g', -1, 64),
			strconv.FormatFloat(p.Value, 'g', -1, 64),
			strconv.Itoa(p.OriginalIndex),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}

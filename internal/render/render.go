package render

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"shiftwatch/internal/detect"
	"shiftwatch/internal/series"
)

// ChartOptions size the rendered chart.
type ChartOptions struct {
	Width  int
	Height int
	Title  string
}

// Downsample thins a point slice to at most max points for plotting.
func Downsample(points []series.Point, max int) []series.Point {
	if max <= 0 || len(points) <= max {
		return points
	}

	result := make([]series.Point, 0, max)
	step := float64(len(points)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(points) {
			idx = len(points) - 1
		}
		result = append(result, points[idx])
	}
	return result
}

// WritePNG renders the series with detected change points annotated.
func WritePNG(path string, points []series.Point, events []detect.Event, opts ChartOptions) error {
	if len(points) == 0 {
		return errors.New("render: no points to plot")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	width := opts.Width
	if width <= 0 {
		width = 1280
	}
	height := opts.Height
	if height <= 0 {
		height = 720
	}

	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.Position
		y[i] = p.Value
	}

	annotations := make([]chart.Value2, 0, len(events))
	for _, ev := range events {
		annotations = append(annotations, chart.Value2{
			XValue: ev.Position,
			YValue: ev.Value,
			Label:  fmt.Sprintf("%s (%.2f)", ev.Type, ev.Confidence),
		})
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.3f")
	}
	graph := chart.Chart{
		Title:  opts.Title,
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: valueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Value",
			ValueFormatter: valueFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Series",
				XValues: x,
				YValues: y,
			},
			chart.AnnotationSeries{
				Annotations: annotations,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

// WriteEventsCSV exports detected change points as CSV.
func WriteEventsCSV(path string, events []detect.Event) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"position", "value", "original_index", "change_type", "confidence", "before_mean", "after_mean", "before_slope", "after_slope"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, ev := range events {
		record := []string{
			formatFloat(ev.Position),
			formatFloat(ev.Value),
			strconv.Itoa(ev.OriginalIndex),
			string(ev.Type),
			strconv.FormatFloat(ev.Confidence, 'f', 4, 64),
			formatFloat(ev.Before.Mean),
			formatFloat(ev.After.Mean),
			formatFloat(ev.Before.Slope),
			formatFloat(ev.After.Slope),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

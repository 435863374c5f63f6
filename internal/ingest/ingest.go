package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shiftwatch/internal/series"
)

// PositionMode selects how each row's position is derived.
type PositionMode int

const (
	// Ordinal numbers rows in file order.
	Ordinal PositionMode = iota
	// Numeric parses the position column as a number.
	Numeric
	// Timestamp parses the position column as a timestamp and uses
	// epoch milliseconds.
	Timestamp
)

// ParsePositionMode converts a config string into a PositionMode.
func ParsePositionMode(s string) (PositionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ordinal":
		return Ordinal, nil
	case "numeric":
		return Numeric, nil
	case "timestamp":
		return Timestamp, nil
	default:
		return Ordinal, fmt.Errorf("ingest: unknown position mode %q", s)
	}
}

// String renders the mode for logs and flags.
func (m PositionMode) String() string {
	switch m {
	case Numeric:
		return "numeric"
	case Timestamp:
		return "timestamp"
	default:
		return "ordinal"
	}
}

// Options govern CSV extraction.
type Options struct {
	// ValueColumn names the header column to read values from. Without a
	// header it is parsed as a zero-based column index.
	ValueColumn string
	// PositionColumn names the position column. Ignored in Ordinal mode.
	PositionColumn string
	Mode           PositionMode
	HasHeader      bool
	Comma          rune
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ReadFile extracts a series from a CSV file on disk.
func ReadFile(path string, opts Options) ([]series.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read extracts a series from CSV data. Rows are returned sorted by position
// with OriginalIndex recording the pre-sort row order. Values that do not
// parse as finite numbers fail the extraction.
func Read(r io.Reader, opts Options) ([]series.Point, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	valueIdx, posIdx, err := resolveColumns(reader, opts)
	if err != nil {
		return nil, err
	}

	points := make([]series.Point, 0, 256)
	row := 0
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("ingest: read row %d: %w", row, readErr)
		}

		if valueIdx >= len(record) {
			return nil, fmt.Errorf("ingest: row %d has no column %d", row, valueIdx)
		}

		value, parseErr := parseValue(record[valueIdx])
		if parseErr != nil {
			return nil, fmt.Errorf("ingest: row %d: %w", row, parseErr)
		}

		position := float64(row)
		if opts.Mode != Ordinal {
			if posIdx >= len(record) {
				return nil, fmt.Errorf("ingest: row %d has no column %d", row, posIdx)
			}
			position, parseErr = parsePosition(record[posIdx], opts.Mode)
			if parseErr != nil {
				return nil, fmt.Errorf("ingest: row %d: %w", row, parseErr)
			}
		}

		points = append(points, series.Point{
			Position:      position,
			Value:         value,
			OriginalIndex: row,
		})
		row++
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Position < points[j].Position
	})

	if err := series.Validate(points); err != nil {
		return nil, err
	}
	return points, nil
}

func resolveColumns(reader *csv.Reader, opts Options) (valueIdx, posIdx int, err error) {
	posIdx = -1

	if !opts.HasHeader {
		valueIdx, err = columnIndex(opts.ValueColumn, 0)
		if err != nil {
			return 0, 0, err
		}
		if opts.Mode != Ordinal {
			posIdx, err = columnIndex(opts.PositionColumn, -1)
			if err != nil {
				return 0, 0, err
			}
			if posIdx < 0 {
				return 0, 0, fmt.Errorf("ingest: position column required for %s mode", opts.Mode)
			}
		}
		return valueIdx, posIdx, nil
	}

	header, readErr := reader.Read()
	if readErr != nil {
		return 0, 0, fmt.Errorf("ingest: read header: %w", readErr)
	}

	valueIdx = findColumn(header, opts.ValueColumn)
	if valueIdx < 0 {
		// no named column; fall back to the last column, which is where
		// most exports put the measurement
		if opts.ValueColumn != "" {
			return 0, 0, fmt.Errorf("ingest: value column %q not found", opts.ValueColumn)
		}
		valueIdx = len(header) - 1
	}

	if opts.Mode != Ordinal {
		posIdx = findColumn(header, opts.PositionColumn)
		if posIdx < 0 {
			return 0, 0, fmt.Errorf("ingest: position column %q not found", opts.PositionColumn)
		}
	}

	return valueIdx, posIdx, nil
}

func columnIndex(s string, fallback int) (int, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	idx, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("ingest: invalid column index %q", s)
	}
	return idx, nil
}

func findColumn(header []string, name string) int {
	if strings.TrimSpace(name) == "" {
		return -1
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func parseValue(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse value %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

func parsePosition(s string, mode PositionMode) (float64, error) {
	s = strings.TrimSpace(s)
	switch mode {
	case Numeric:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("parse position %q: %w", s, err)
		}
		return d.InexactFloat64(), nil
	case Timestamp:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return float64(t.UnixMilli()), nil
			}
		}
		// epoch seconds or milliseconds also show up in exports
		if d, err := decimal.NewFromString(s); err == nil {
			return d.InexactFloat64(), nil
		}
		return 0, fmt.Errorf("parse timestamp %q", s)
	default:
		return 0, fmt.Errorf("ingest: position mode %s takes no column", mode)
	}
}

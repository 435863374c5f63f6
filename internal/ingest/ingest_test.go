package ingest

import (
	"strings"
	"testing"
)

func TestReadOrdinalWithHeader(t *testing.T) {
	csvData := "ts,value\n2025-01-01,1.5\n2025-01-02,2.25\n2025-01-03,3\n"
	points, err := Read(strings.NewReader(csvData), Options{
		ValueColumn: "value",
		Mode:        Ordinal,
		HasHeader:   true,
	})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[1].Value != 2.25 {
		t.Fatalf("expected 2.25, got %v", points[1].Value)
	}
	if points[2].Position != 2 || points[2].OriginalIndex != 2 {
		t.Fatalf("ordinal positions wrong: %+v", points[2])
	}
}

func TestReadDefaultsToLastColumn(t *testing.T) {
	csvData := "a,b,measurement\nx,y,10\nx,y,20\n"
	points, err := Read(strings.NewReader(csvData), Options{HasHeader: true})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if points[0].Value != 10 || points[1].Value != 20 {
		t.Fatalf("expected last column values, got %+v", points)
	}
}

func TestReadNumericPositionSorts(t *testing.T) {
	csvData := "pos,value\n3,30\n1,10\n2,20\n"
	points, err := Read(strings.NewReader(csvData), Options{
		ValueColumn:    "value",
		PositionColumn: "pos",
		Mode:           Numeric,
		HasHeader:      true,
	})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if points[0].Value != 10 || points[1].Value != 20 || points[2].Value != 30 {
		t.Fatalf("points not sorted by position: %+v", points)
	}
	// OriginalIndex keeps the file row order
	if points[0].OriginalIndex != 1 || points[2].OriginalIndex != 0 {
		t.Fatalf("original indices wrong: %+v", points)
	}
}

func TestReadTimestampPosition(t *testing.T) {
	csvData := "ts,value\n2025-01-02T00:00:00Z,2\n2025-01-01T00:00:00Z,1\n"
	points, err := Read(strings.NewReader(csvData), Options{
		ValueColumn:    "value",
		PositionColumn: "ts",
		Mode:           Timestamp,
		HasHeader:      true,
	})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if points[0].Value != 1 {
		t.Fatalf("expected earliest timestamp first, got %+v", points[0])
	}
	if points[0].Position >= points[1].Position {
		t.Fatalf("positions should ascend: %+v", points)
	}
}

func TestReadNoHeaderIndexColumns(t *testing.T) {
	csvData := "5,100\n6,200\n"
	points, err := Read(strings.NewReader(csvData), Options{
		ValueColumn:    "1",
		PositionColumn: "0",
		Mode:           Numeric,
		HasHeader:      false,
	})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if points[0].Position != 5 || points[0].Value != 100 {
		t.Fatalf("unexpected first point: %+v", points[0])
	}
}

func TestReadRejectsBadValue(t *testing.T) {
	csvData := "value\n1\nnot-a-number\n"
	if _, err := Read(strings.NewReader(csvData), Options{ValueColumn: "value", HasHeader: true}); err == nil {
		t.Fatal("non-numeric value should fail extraction")
	}
}

func TestReadMissingValueColumn(t *testing.T) {
	csvData := "a,b\n1,2\n"
	if _, err := Read(strings.NewReader(csvData), Options{ValueColumn: "missing", HasHeader: true}); err == nil {
		t.Fatal("missing column should fail")
	}
}

func TestParsePositionMode(t *testing.T) {
	for _, s := range []string{"ordinal", "numeric", "timestamp", ""} {
		if _, err := ParsePositionMode(s); err != nil {
			t.Fatalf("ParsePositionMode(%q) failed: %v", s, err)
		}
	}
	if _, err := ParsePositionMode("bogus"); err == nil {
		t.Fatal("unknown mode should error")
	}
}

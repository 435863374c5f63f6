package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeriesPoint is a single persisted observation of the watched series.
type SeriesPoint struct {
	Position decimal.Decimal
	Value    decimal.Decimal
}

// AlertRecord captures an emitted change-point alert for de-duplication/auditing.
type AlertRecord struct {
	ID         int64
	Series     string
	Position   decimal.Decimal
	ChangeType string
	Confidence decimal.Decimal
	Algorithm  string
	Channels   []string
	CreatedAt  time.Time
}

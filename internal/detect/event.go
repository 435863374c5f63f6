package detect

// ChangeType classifies what kind of structural change an event marks.
type ChangeType string

const (
	LevelIncrease      ChangeType = "level_increase"
	LevelDecrease      ChangeType = "level_decrease"
	Peak               ChangeType = "peak"
	Valley             ChangeType = "valley"
	TrendChange        ChangeType = "trend_change"
	StartIncrease      ChangeType = "start_increase"
	StartDecrease      ChangeType = "start_decrease"
	IncreaseVolatility ChangeType = "increase_volatility"
	DecreaseVolatility ChangeType = "decrease_volatility"
	VarianceChange     ChangeType = "variance_change"
)

// SegmentStats summarizes one side of a change point. Each detector fills
// only the fields it actually measures.
type SegmentStats struct {
	Mean     float64 `json:"mean"`
	Slope    float64 `json:"slope"`
	Variance float64 `json:"variance"`
}

// Event is a single detected change point. Created once by a detector and
// never mutated afterwards.
type Event struct {
	Position      float64      `json:"position"`
	Value         float64      `json:"value"`
	OriginalIndex int          `json:"original_index"`
	Confidence    float64      `json:"confidence"`
	Algorithm     Algorithm    `json:"-"`
	Type          ChangeType   `json:"change_type"`
	Before        SegmentStats `json:"before"`
	After         SegmentStats `json:"after"`
}

// Summary aggregates one detection run for downstream consumers.
type Summary struct {
	TotalChangePoints int       `json:"total_change_points"`
	AverageConfidence float64   `json:"average_confidence"`
	Algorithm         Algorithm `json:"-"`
	Options           Options   `json:"options"`
}

// Summarize builds the run summary for an event list.
func Summarize(events []Event, algo Algorithm, opts Options) Summary {
	s := Summary{
		TotalChangePoints: len(events),
		Algorithm:         algo,
		Options:           opts,
	}
	if len(events) == 0 {
		return s
	}
	total := 0.0
	for _, ev := range events {
		total += ev.Confidence
	}
	s.AverageConfidence = total / float64(len(events))
	return s
}

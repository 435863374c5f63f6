package detect

// Options carries every per-algorithm tuning knob. Zero values mean "use a
// default scaled to the series length"; thresholds that depend on the data
// itself (residual spread, global variance) are resolved inside the detector.
type Options struct {
	// WindowSize is the flank width used by the moving-average, trend, and
	// gate computations.
	WindowSize int `json:"window_size,omitempty" mapstructure:"window_size"`
	// ThresholdMultiplier scales the residual standard deviation into the
	// moving-average detection threshold.
	ThresholdMultiplier float64 `json:"threshold_multiplier,omitempty" mapstructure:"threshold_multiplier"`
	// TrendGate is the secondary slope-difference gate shared by the
	// moving-average, CUSUM, and EWMA detectors. Zero derives it from the
	// residual spread and window size.
	TrendGate float64 `json:"trend_gate,omitempty" mapstructure:"trend_gate"`

	// Threshold is the CUSUM decision threshold h. Zero derives it from the
	// residual standard deviation.
	Threshold float64 `json:"threshold,omitempty" mapstructure:"threshold"`
	// Delta is the CUSUM slack parameter k. Zero derives it from the
	// residual standard deviation.
	Delta float64 `json:"delta,omitempty" mapstructure:"delta"`

	// Lambda is the EWMA smoothing factor in (0, 1].
	Lambda float64 `json:"lambda,omitempty" mapstructure:"lambda"`
	// EWMAThreshold is the normalized prediction-error threshold.
	EWMAThreshold float64 `json:"ewma_threshold,omitempty" mapstructure:"ewma_threshold"`

	// MinSegmentSize is the smallest segment binary segmentation may produce.
	MinSegmentSize int `json:"min_segment_size,omitempty" mapstructure:"min_segment_size"`

	// Penalty is the PELT per-change-point penalty. Zero derives a
	// BIC-style penalty from the global variance.
	Penalty float64 `json:"penalty,omitempty" mapstructure:"penalty"`
	// MinSegmentLength is the smallest segment PELT may produce.
	MinSegmentLength int `json:"min_segment_length,omitempty" mapstructure:"min_segment_length"`

	// TrendThreshold is the slope-difference threshold of the trend
	// detector. Zero derives it from the series spread.
	TrendThreshold float64 `json:"trend_threshold,omitempty" mapstructure:"trend_threshold"`

	// VarianceWindow is the flank width of the variance detector.
	VarianceWindow int `json:"variance_window,omitempty" mapstructure:"variance_window"`
	// VarianceThreshold is the variance ratio that flags a change. Must be
	// greater than 1.
	VarianceThreshold float64 `json:"variance_threshold,omitempty" mapstructure:"variance_threshold"`
}

// withDefaults fills unset knobs with defaults scaled to a series of n points.
func (o Options) withDefaults(n int) Options {
	if o.WindowSize <= 0 {
		o.WindowSize = clampInt(n/20, 3, 50)
	}
	if o.ThresholdMultiplier <= 0 {
		o.ThresholdMultiplier = 2.0
	}
	if o.Lambda <= 0 || o.Lambda > 1 {
		o.Lambda = 0.2
	}
	if o.EWMAThreshold <= 0 {
		o.EWMAThreshold = 3.0
	}
	if o.MinSegmentSize <= 0 {
		o.MinSegmentSize = clampInt(n/20, 5, 50)
	}
	if o.MinSegmentLength <= 0 {
		o.MinSegmentLength = clampInt(n/30, 3, 30)
	}
	if o.VarianceWindow <= 0 {
		o.VarianceWindow = clampInt(n/20, 10, 100)
	}
	if o.VarianceThreshold <= 1 {
		o.VarianceThreshold = 2.0
	}
	return o
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

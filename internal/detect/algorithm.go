package detect

import "fmt"

// Algorithm selects one of the change-point detection strategies.
type Algorithm int

const (
	// MovingAverage compares adjacent sliding-window means on the
	// detrended series.
	MovingAverage Algorithm = iota
	// CUSUM accumulates one-sided cumulative sums of detrended residuals.
	CUSUM
	// EWMA flags spikes in the one-step prediction error of an
	// exponentially weighted moving average.
	EWMA
	// BinarySegmentation recursively splits the segment minimizing
	// combined within-segment variance.
	BinarySegmentation
	// PELT runs a cost-bounded approximate pruned-exact-linear-time
	// dynamic program over segment variances.
	PELT
	// Trend flags shifts in local regression slope.
	Trend
	// Variance flags shifts in local variance ratio.
	Variance
)

// ParseAlgorithm maps a config string onto an Algorithm. Unknown names are a
// hard error, never a fallback.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "moving_average", "moving-average":
		return MovingAverage, nil
	case "cusum":
		return CUSUM, nil
	case "ewma":
		return EWMA, nil
	case "binary_segmentation", "binary-segmentation":
		return BinarySegmentation, nil
	case "pelt":
		return PELT, nil
	case "trend":
		return Trend, nil
	case "variance":
		return Variance, nil
	default:
		return 0, fmt.Errorf("detect: unknown algorithm %q", name)
	}
}

// String returns the canonical config name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case MovingAverage:
		return "moving_average"
	case CUSUM:
		return "cusum"
	case EWMA:
		return "ewma"
	case BinarySegmentation:
		return "binary_segmentation"
	case PELT:
		return "pelt"
	case Trend:
		return "trend"
	case Variance:
		return "variance"
	default:
		return "unknown"
	}
}

// Algorithms lists every supported algorithm in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{MovingAverage, CUSUM, EWMA, BinarySegmentation, PELT, Trend, Variance}
}

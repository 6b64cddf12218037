package junction

import (
	"fmt"
)

// Estimator buckets a raw vehicle count into a CongestionLevel using two
// fixed thresholds: count < LowMax is LOW, LowMax <= count < HighMin is
// MEDIUM, count >= HighMin is HIGH. It is stateless and recomputed every
// tick.
type Estimator struct {
	LowMax  int
	HighMin int
}

// NewEstimator validates the threshold ordering (0 < LowMax < HighMin).
func NewEstimator(lowMax, highMin int) (Estimator, error) {
	if lowMax <= 0 {
		return Estimator{}, newConfigError("lowMax", "threshold must be positive")
	}
	if highMin <= lowMax {
		return Estimator{}, newConfigError("highMin", fmt.Sprintf("threshold %d must be greater than lowMax %d", highMin, lowMax))
	}
	return Estimator{LowMax: lowMax, HighMin: highMin}, nil
}

// Level maps a non-negative vehicle count to its congestion level. The
// mapping is monotonic non-decreasing in the count.
func (e Estimator) Level(count int) (CongestionLevel, error) {
	if count < 0 {
		return Low, fmt.Errorf("%w: vehicle count %d is negative", ErrInvalidMeasurement, count)
	}
	switch {
	case count < e.LowMax:
		return Low, nil
	case count < e.HighMin:
		return Medium, nil
	default:
		return High, nil
	}
}

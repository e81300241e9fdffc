package magnetism

import "errors"

// DefaultBaselineWindow is the number of trailing readings averaged into the
// ambient baseline when no window size is given.
const DefaultBaselineWindow = 10

// ErrNoReadings is returned when a baseline is requested over zero readings.
// It is deliberately not softened to a zero baseline: "no data collected" and
// "confirmed calm ambient field" are different states for downstream callers.
var ErrNoReadings = errors.New("no readings to estimate a baseline from")

// BaselineResult holds an estimated ambient field magnitude and how many
// readings contributed to it.
type BaselineResult struct {
	Baseline     float64 `json:"baseline"`
	ReadingsUsed int     `json:"readings_used"`
}

// CalculateBaseline estimates the ambient field magnitude from the last
// min(windowSize, len(readings)) readings. Readings are ordered oldest first,
// so the suffix window tracks the most recent samples and a walk that began
// near a disturbance does not skew the estimate. A windowSize <= 0 falls back
// to DefaultBaselineWindow.
func CalculateBaseline(readings []MagnetometerReading, windowSize int) (BaselineResult, error) {
	if len(readings) == 0 {
		return BaselineResult{}, ErrNoReadings
	}
	if windowSize <= 0 {
		windowSize = DefaultBaselineWindow
	}

	start := len(readings) - windowSize
	if start < 0 {
		start = 0
	}
	window := readings[start:]

	var sum float64
	for _, r := range window {
		sum += r.Magnitude
	}
	return BaselineResult{
		Baseline:     sum / float64(len(window)),
		ReadingsUsed: len(window),
	}, nil
}

// CalculateRollingAverages produces one trailing-window mean per reading:
// index i averages readings[max(0, i-windowSize+1) .. i]. This is a display
// and diagnostic helper, not a decision input, so an empty batch yields an
// empty result rather than an error.
func CalculateRollingAverages(readings []MagnetometerReading, windowSize int) []float64 {
	if len(readings) == 0 {
		return nil
	}
	if windowSize <= 0 {
		windowSize = DefaultBaselineWindow
	}

	averages := make([]float64, len(readings))
	for i := range readings {
		start := i - windowSize + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		for _, r := range readings[start : i+1] {
			sum += r.Magnitude
		}
		averages[i] = sum / float64(i+1-start)
	}
	return averages
}

package magnetism

// DefaultThresholdDelta is the minimum excess over baseline, in µT, required
// to flag a reading as anomalous.
const DefaultThresholdDelta = 10.0

// DetectionConfig tunes anomaly detection. Zero values fall back to the
// documented defaults (10 µT delta, 10-sample baseline window).
type DetectionConfig struct {
	ThresholdDelta     float64 `json:"threshold_delta"`
	BaselineWindowSize int     `json:"baseline_window_size"`
}

func (c DetectionConfig) withDefaults() DetectionConfig {
	if c.ThresholdDelta == 0 {
		c.ThresholdDelta = DefaultThresholdDelta
	}
	if c.BaselineWindowSize <= 0 {
		c.BaselineWindowSize = DefaultBaselineWindow
	}
	return c
}

// DetectAnomalies flags every reading whose magnitude strictly exceeds
// baseline + ThresholdDelta, where the baseline is computed once over the
// whole batch. Output order matches input order. An empty batch is a valid,
// trivial result, not an error.
func DetectAnomalies(positioned []PositionedReading, cfg DetectionConfig) []DetectedAnomaly {
	if len(positioned) == 0 {
		return nil
	}
	cfg = cfg.withDefaults()

	base, err := CalculateBaseline(extractReadings(positioned), cfg.BaselineWindowSize)
	if err != nil {
		// Unreachable: the batch is non-empty.
		return nil
	}
	threshold := base.Baseline + cfg.ThresholdDelta

	var anomalies []DetectedAnomaly
	for _, pr := range positioned {
		if pr.Reading.Magnitude <= threshold {
			continue
		}
		anomalies = append(anomalies, DetectedAnomaly{
			ID:        anomalyID(pr.Position, pr.Reading.Timestamp),
			Position:  pr.Position,
			Intensity: pr.Reading.Magnitude - base.Baseline,
			Reading:   pr.Reading,
		})
	}
	return anomalies
}

// DetectionSummary is the diagnostic-rich detection result. Anomalies carry
// classification "unknown" until a classifier pass runs. ScanDuration is the
// wall-clock seconds the detection call itself took.
type DetectionSummary struct {
	Anomalies         []MagneticAnomaly `json:"anomalies"`
	BaselineMagnitude float64           `json:"baseline_magnitude"`
	Threshold         float64           `json:"threshold"`
	ScanDuration      float64           `json:"scan_duration_seconds"`
}

// DetectAnomaliesWithMetadata wraps DetectAnomalies with baseline and
// threshold diagnostics. Unlike CalculateBaseline, an empty batch yields an
// all-zero summary instead of an error: a metadata report tolerates "no
// data" as a zero-valued scan. The asymmetry is deliberate.
func DetectAnomaliesWithMetadata(positioned []PositionedReading, cfg DetectionConfig) DetectionSummary {
	if len(positioned) == 0 {
		return DetectionSummary{}
	}

	start := clock.Now()
	cfg = cfg.withDefaults()

	base, _ := CalculateBaseline(extractReadings(positioned), cfg.BaselineWindowSize)
	detected := DetectAnomalies(positioned, cfg)

	anomalies := make([]MagneticAnomaly, len(detected))
	for i, a := range detected {
		anomalies[i] = MagneticAnomaly{
			ID:             a.ID,
			Position:       a.Position,
			Intensity:      a.Intensity,
			Classification: ClassificationUnknown,
		}
	}

	return DetectionSummary{
		Anomalies:         anomalies,
		BaselineMagnitude: base.Baseline,
		Threshold:         base.Baseline + cfg.ThresholdDelta,
		ScanDuration:      clock.Since(start).Seconds(),
	}
}

func extractReadings(positioned []PositionedReading) []MagnetometerReading {
	readings := make([]MagnetometerReading, len(positioned))
	for i, pr := range positioned {
		readings[i] = pr.Reading
	}
	return readings
}

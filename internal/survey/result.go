package survey

import "github.com/zzfadi/deeptime-anomaly-engine/internal/magnetism"

// DefaultMaxGroupingBatch caps how many anomalies one scan may feed into
// proximity grouping. Grouping is O(n²) in pairwise distance checks; a scan
// noisy enough to exceed the cap gets its anomalies reported ungrouped
// rather than stalling the pipeline.
const DefaultMaxGroupingBatch = 500

// EngineConfig bundles the detection and grouping knobs for one deployment.
type EngineConfig struct {
	Detection        magnetism.DetectionConfig
	Grouping         magnetism.GroupingConfig
	MaxGroupingBatch int
}

// BuildSurveyResult runs the full engine over a parsed scan: detection with
// metadata, classification of every anomaly, and proximity grouping. Every
// anomaly is classified with the default point footprint; a shape-inference
// collaborator can reclassify with real hints downstream.
func BuildSurveyResult(scan Scan, cfg EngineConfig) SurveyResult {
	summary := magnetism.DetectAnomaliesWithMetadata(scan.Readings, cfg.Detection)

	anomalies := summary.Anomalies
	for i := range anomalies {
		anomalies[i].Classification = magnetism.ClassifyAnomaly(magnetism.AnomalySignature{
			Intensity: anomalies[i].Intensity,
			Spatial:   magnetism.DefaultSpatialCharacteristics(),
		})
	}

	result := SurveyResult{
		ScanID:            scan.ScanID,
		DeviceID:          scan.DeviceID,
		Anomalies:         anomalies,
		BaselineMagnitude: summary.BaselineMagnitude,
		Threshold:         summary.Threshold,
		ScanDuration:      summary.ScanDuration,
		ReadingCount:      len(scan.Readings),
		ProcessedAt:       clock.Now(),
	}

	maxBatch := cfg.MaxGroupingBatch
	if maxBatch <= 0 {
		maxBatch = DefaultMaxGroupingBatch
	}
	if len(anomalies) > maxBatch {
		result.GroupingSkipped = true
		return result
	}

	groups := magnetism.GroupAnomaliesByProximity(anomalies, cfg.Grouping)
	result.Groups = make([]GroupReport, len(groups))
	for i, g := range groups {
		result.Groups[i] = GroupReport{AnomalyGroup: g}
	}
	return result
}

package survey

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzfadi/deeptime-anomaly-engine/internal/magnetism"
)

// testScan builds a scan with calm 40 µT readings plus spikes of the given
// magnitudes at the front, all within a couple of meters of each other.
func testScan(spikes ...float64) Scan {
	base := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	magnitudes := append(append([]float64{}, spikes...), 40, 40, 40, 40, 40, 40, 40, 40, 40, 40)

	readings := make([]magnetism.PositionedReading, len(magnitudes))
	for i, m := range magnitudes {
		readings[i] = magnetism.PositionedReading{
			Reading: magnetism.NewReading(base.Add(time.Duration(i)*100*time.Millisecond), m, 0, 0),
			Position: magnetism.GeoCoordinate{
				Latitude:  37.7749 + float64(i)*0.000001,
				Longitude: -122.4194,
				Altitude:  12,
				Accuracy:  3,
			},
		}
	}
	return Scan{ScanID: "scan-test", DeviceID: "pixel-9", Readings: readings}
}

func TestBuildSurveyResult(t *testing.T) {
	frozen := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	magnetism.SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)
	defer magnetism.SetClock(nil)

	t.Run("detects, classifies, and groups", func(t *testing.T) {
		result := BuildSurveyResult(testScan(90, 75), EngineConfig{})

		assert.Equal(t, "scan-test", result.ScanID)
		assert.Equal(t, "pixel-9", result.DeviceID)
		assert.Equal(t, 12, result.ReadingCount)
		assert.InDelta(t, 40.0, result.BaselineMagnitude, 1e-9)
		assert.InDelta(t, 50.0, result.Threshold, 1e-9)
		assert.Equal(t, frozen, result.ProcessedAt)
		assert.False(t, result.GroupingSkipped)

		require.Len(t, result.Anomalies, 2)
		for _, a := range result.Anomalies {
			// Default point footprint with intensity 50 and 35: both land
			// in the weak-compact metal debris rule.
			assert.Equal(t, magnetism.ClassificationMetalDebris, a.Classification)
		}

		// Both spikes are within a meter of each other: one group.
		require.Len(t, result.Groups, 1)
		assert.Len(t, result.Groups[0].Anomalies, 2)
		assert.InDelta(t, 50.0, result.Groups[0].CombinedIntensity, 1e-9)
		assert.Empty(t, result.Groups[0].SiteName)
	})

	t.Run("empty scan yields a zero result", func(t *testing.T) {
		result := BuildSurveyResult(Scan{ScanID: "scan-empty"}, EngineConfig{})

		assert.Equal(t, "scan-empty", result.ScanID)
		assert.Empty(t, result.Anomalies)
		assert.Empty(t, result.Groups)
		assert.Zero(t, result.BaselineMagnitude)
		assert.Zero(t, result.Threshold)
		assert.Zero(t, result.ReadingCount)
		assert.False(t, result.GroupingSkipped)
	})

	t.Run("grouping is skipped above the batch cap", func(t *testing.T) {
		result := BuildSurveyResult(testScan(90, 75, 80), EngineConfig{MaxGroupingBatch: 2})

		require.Len(t, result.Anomalies, 3)
		assert.True(t, result.GroupingSkipped)
		assert.Empty(t, result.Groups)
	})

	t.Run("custom detection config is applied", func(t *testing.T) {
		cfg := EngineConfig{
			Detection: magnetism.DetectionConfig{ThresholdDelta: 40},
		}

		result := BuildSurveyResult(testScan(75), cfg)

		assert.InDelta(t, 80.0, result.Threshold, 1e-9)
		assert.Empty(t, result.Anomalies) // 75 µT is under baseline+40
	})
}

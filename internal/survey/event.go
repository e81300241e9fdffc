// Package survey models magnetometer scan batches as they flow through the
// engine service: the raw wire format published by the capture app, the
// parsed in-memory scan, and the classified survey result destined for the
// sink topic. The numerical work lives in the magnetism package; this one
// owns parsing, validation, and result assembly.
package survey

import (
	"context"
	"time"

	"github.com/zzfadi/deeptime-anomaly-engine/internal/magnetism"
)

// RawEvent represents an unprocessed scan message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// RawReadingRecord is one positioned sample in the flat JSON produced by the
// capture app. Field strengths are µT, positions WGS-84 degrees, timestamps
// Unix milliseconds. Any magnitude present on the wire is ignored; it is
// recomputed from the axis components during parsing.
type RawReadingRecord struct {
	TimestampMS int64   `json:"timestamp_ms"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Altitude    float64 `json:"altitude"`
	Accuracy    float64 `json:"accuracy"`
}

// RawScanRecord is the wire format for one complete captured scan batch.
// The capture app has already applied its scan timeout, so a record is a
// finite, time-bounded batch.
type RawScanRecord struct {
	ScanID   string             `json:"scan_id"`
	DeviceID string             `json:"device_id,omitempty"`
	Readings []RawReadingRecord `json:"readings"`
}

// Scan is the parsed, validated form of a raw scan batch.
type Scan struct {
	ScanID   string
	DeviceID string
	Readings []magnetism.PositionedReading
}

// GroupReport wraps an anomaly group with optional site-context enrichment.
// SiteSource is "reverse" when a place name was resolved at the centroid,
// "original" when the provider returned nothing, and "failed" on lookup
// errors.
type GroupReport struct {
	magnetism.AnomalyGroup
	SiteName   string `json:"site_name,omitempty"`
	SiteSource string `json:"site_source,omitempty"`
}

// SurveyResult is the classified, grouped outcome of one scan batch, the
// serialized form destined for the sink topic.
type SurveyResult struct {
	ScanID            string                      `json:"scan_id"`
	DeviceID          string                      `json:"device_id,omitempty"`
	Anomalies         []magnetism.MagneticAnomaly `json:"anomalies"`
	Groups            []GroupReport               `json:"groups"`
	BaselineMagnitude float64                     `json:"baseline_magnitude"`
	Threshold         float64                     `json:"threshold"`
	ScanDuration      float64                     `json:"scan_duration_seconds"`
	ReadingCount      int                         `json:"reading_count"`
	GroupingSkipped   bool                        `json:"grouping_skipped,omitempty"`
	ProcessedAt       time.Time                   `json:"processed_at"`
}

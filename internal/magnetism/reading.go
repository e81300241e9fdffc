package magnetism

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// MagnetometerReading is a single three-axis field sample in µT.
// Magnitude is the Euclidean norm of (X, Y, Z); use NewReading to build one.
type MagnetometerReading struct {
	Timestamp time.Time `json:"timestamp"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Magnitude float64   `json:"magnitude"`
}

// NewReading builds a reading with Magnitude derived from the axis components.
func NewReading(timestamp time.Time, x, y, z float64) MagnetometerReading {
	return MagnetometerReading{
		Timestamp: timestamp,
		X:         x,
		Y:         y,
		Z:         z,
		Magnitude: math.Sqrt(x*x + y*y + z*z),
	}
}

// GeoCoordinate is a WGS-84 position. Latitude is in [-90, 90] degrees,
// longitude in [-180, 180]. Altitude and horizontal accuracy are in meters.
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Accuracy  float64 `json:"accuracy"`
}

// PositionedReading pairs a magnetometer sample with the GPS fix where it
// was captured.
type PositionedReading struct {
	Reading  MagnetometerReading `json:"reading"`
	Position GeoCoordinate       `json:"position"`
}

// DetectedAnomaly is a reading whose magnitude exceeded the detection
// threshold. Intensity is the excess over the batch baseline, always > 0.
type DetectedAnomaly struct {
	ID        string              `json:"id"`
	Position  GeoCoordinate       `json:"position"`
	Intensity float64             `json:"intensity"`
	Reading   MagnetometerReading `json:"reading"`
}

// Shape describes the inferred footprint geometry of an anomaly.
type Shape string

const (
	ShapeLinear      Shape = "linear"
	ShapeRectangular Shape = "rectangular"
	ShapeIrregular   Shape = "irregular"
	ShapePoint       Shape = "point"
)

// SpatialCharacteristics describes the inferred physical footprint of an
// anomaly in meters, supplied by a shape-inference collaborator when
// available. Depth is optional and unused by classification; it is carried
// for callers that have it (e.g. from LiDAR).
type SpatialCharacteristics struct {
	Width  float64  `json:"width"`
	Length float64  `json:"length"`
	Depth  *float64 `json:"depth,omitempty"`
	Shape  Shape    `json:"shape"`
}

// DefaultSpatialCharacteristics is the footprint assumed when no shape
// inference is available: a 0.1 m point source.
func DefaultSpatialCharacteristics() SpatialCharacteristics {
	return SpatialCharacteristics{Width: 0.1, Length: 0.1, Shape: ShapePoint}
}

// Classification is the semantic label assigned to a detected anomaly.
type Classification string

const (
	ClassificationFoundation  Classification = "foundation"
	ClassificationPipe        Classification = "pipe"
	ClassificationMetalDebris Classification = "metal_debris"
	ClassificationUnknown     Classification = "unknown"
)

// MagneticAnomaly is the externally consumed, classified anomaly.
type MagneticAnomaly struct {
	ID             string         `json:"id"`
	Position       GeoCoordinate  `json:"position"`
	Intensity      float64        `json:"intensity"`
	Classification Classification `json:"classification"`
}

// AnomalyGroup is a cluster of anomalies that likely represent one physical
// feature. CombinedIntensity is the max member intensity; Centroid is the
// component-wise mean of member positions.
type AnomalyGroup struct {
	ID                string            `json:"id"`
	Anomalies         []MagneticAnomaly `json:"anomalies"`
	Centroid          GeoCoordinate     `json:"centroid"`
	CombinedIntensity float64           `json:"combined_intensity"`
}

// anomalyID derives a deterministic ID from the 6-decimal position and the
// reading timestamp. Re-detecting the identical reading yields the identical
// ID, which keeps downstream caching and replay idempotent.
func anomalyID(pos GeoCoordinate, timestamp time.Time) string {
	input := fmt.Sprintf("%.6f|%.6f|%d", pos.Latitude, pos.Longitude, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	return "anomaly-" + hex.EncodeToString(hash[:8])
}

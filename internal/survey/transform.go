package survey

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zzfadi/deeptime-anomaly-engine/internal/magnetism"
)

// ParseRawScan deserializes and validates a RawEvent's value into a Scan.
// Coordinates outside the WGS-84 range reject the whole scan: a corrupt fix
// would silently shift every derived centroid. A missing scan ID gets a
// generated one so downstream correlation still works.
func ParseRawScan(raw RawEvent) (Scan, error) {
	var rec RawScanRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Scan{}, fmt.Errorf("parse raw scan: %w", err)
	}

	if rec.ScanID == "" {
		rec.ScanID = uuid.NewString()
	}

	readings := make([]magnetism.PositionedReading, len(rec.Readings))
	for i, r := range rec.Readings {
		if r.Latitude < -90 || r.Latitude > 90 {
			return Scan{}, fmt.Errorf("parse raw scan %s: reading %d: latitude %g out of range", rec.ScanID, i, r.Latitude)
		}
		if r.Longitude < -180 || r.Longitude > 180 {
			return Scan{}, fmt.Errorf("parse raw scan %s: reading %d: longitude %g out of range", rec.ScanID, i, r.Longitude)
		}

		readings[i] = magnetism.PositionedReading{
			Reading: magnetism.NewReading(time.UnixMilli(r.TimestampMS).UTC(), r.X, r.Y, r.Z),
			Position: magnetism.GeoCoordinate{
				Latitude:  r.Latitude,
				Longitude: r.Longitude,
				Altitude:  r.Altitude,
				Accuracy:  r.Accuracy,
			},
		}
	}

	return Scan{
		ScanID:   rec.ScanID,
		DeviceID: rec.DeviceID,
		Readings: readings,
	}, nil
}

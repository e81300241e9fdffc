package survey

import (
	"context"
	"log/slog"
)

// SiteContextResult contains place details returned by a reverse-geocoding
// provider for a group centroid.
type SiteContextResult struct {
	PlaceName        string
	FormattedAddress string
	Confidence       float64 // provider confidence score, 0.0 to 1.0
}

// SiteContextProvider resolves coordinates to place details so grouped
// anomalies can be labeled with where they were found.
type SiteContextProvider interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (SiteContextResult, error)
}

// EnrichWithSiteContext annotates each group with a place name looked up at
// its centroid. A nil provider returns the result unchanged. A lookup
// failure marks only that group as "failed" and moves on; the survey is
// still usable without site names.
func EnrichWithSiteContext(ctx context.Context, result SurveyResult, provider SiteContextProvider, logger *slog.Logger) SurveyResult {
	if provider == nil {
		return result
	}

	for i := range result.Groups {
		group := &result.Groups[i]

		res, err := provider.ReverseGeocode(ctx, group.Centroid.Latitude, group.Centroid.Longitude)
		if err != nil {
			logger.Warn("site context lookup failed",
				"group_id", group.ID,
				"lat", group.Centroid.Latitude,
				"lon", group.Centroid.Longitude,
				"error", err,
			)
			group.SiteSource = "failed"
			continue
		}
		if res.PlaceName == "" {
			group.SiteSource = "original"
			continue
		}

		group.SiteName = res.PlaceName
		group.SiteSource = "reverse"
	}
	return result
}

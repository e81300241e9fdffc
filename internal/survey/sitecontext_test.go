package survey

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzfadi/deeptime-anomaly-engine/internal/magnetism"
)

type mockSiteProvider struct {
	result SiteContextResult
	err    error
	calls  int
}

func (m *mockSiteProvider) ReverseGeocode(_ context.Context, _, _ float64) (SiteContextResult, error) {
	m.calls++
	return m.result, m.err
}

func resultWithGroups(n int) SurveyResult {
	groups := make([]GroupReport, n)
	for i := range groups {
		groups[i] = GroupReport{
			AnomalyGroup: magnetism.AnomalyGroup{
				ID:       "group-test",
				Centroid: magnetism.GeoCoordinate{Latitude: 37.7749, Longitude: -122.4194},
			},
		}
	}
	return SurveyResult{ScanID: "scan-test", Groups: groups}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnrichWithSiteContext(t *testing.T) {
	ctx := context.Background()

	t.Run("nil provider is a no-op", func(t *testing.T) {
		result := resultWithGroups(2)
		enriched := EnrichWithSiteContext(ctx, result, nil, discardLogger())
		assert.Equal(t, result, enriched)
	})

	t.Run("resolved place names annotate each group", func(t *testing.T) {
		provider := &mockSiteProvider{
			result: SiteContextResult{PlaceName: "Mission District", Confidence: 0.9},
		}

		enriched := EnrichWithSiteContext(ctx, resultWithGroups(2), provider, discardLogger())

		assert.Equal(t, 2, provider.calls)
		for _, g := range enriched.Groups {
			assert.Equal(t, "Mission District", g.SiteName)
			assert.Equal(t, "reverse", g.SiteSource)
		}
	})

	t.Run("lookup failure degrades gracefully", func(t *testing.T) {
		provider := &mockSiteProvider{err: errors.New("rate limited")}

		enriched := EnrichWithSiteContext(ctx, resultWithGroups(1), provider, discardLogger())

		require.Len(t, enriched.Groups, 1)
		assert.Empty(t, enriched.Groups[0].SiteName)
		assert.Equal(t, "failed", enriched.Groups[0].SiteSource)
	})

	t.Run("empty provider response leaves the group unnamed", func(t *testing.T) {
		provider := &mockSiteProvider{}

		enriched := EnrichWithSiteContext(ctx, resultWithGroups(1), provider, discardLogger())

		assert.Empty(t, enriched.Groups[0].SiteName)
		assert.Equal(t, "original", enriched.Groups[0].SiteSource)
	})

	t.Run("no groups means no lookups", func(t *testing.T) {
		provider := &mockSiteProvider{}

		EnrichWithSiteContext(ctx, resultWithGroups(0), provider, discardLogger())

		assert.Zero(t, provider.calls)
	})
}

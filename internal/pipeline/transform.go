package pipeline

import (
	"context"
	"log/slog"

	"github.com/zzfadi/deeptime-anomaly-engine/internal/survey"
)

// ScanTransformer implements Transformer using the survey domain functions
// with optional site-context enrichment.
type ScanTransformer struct {
	engineCfg survey.EngineConfig
	sites     survey.SiteContextProvider
	logger    *slog.Logger
}

// NewTransformer creates a ScanTransformer. Pass a nil site-context provider
// to disable place-name enrichment.
func NewTransformer(engineCfg survey.EngineConfig, sites survey.SiteContextProvider, logger *slog.Logger) *ScanTransformer {
	return &ScanTransformer{
		engineCfg: engineCfg,
		sites:     sites,
		logger:    logger,
	}
}

func (t *ScanTransformer) Transform(ctx context.Context, raw survey.RawEvent) (survey.SurveyResult, error) {
	scan, err := survey.ParseRawScan(raw)
	if err != nil {
		return survey.SurveyResult{}, err
	}

	result := survey.BuildSurveyResult(scan, t.engineCfg)
	result = survey.EnrichWithSiteContext(ctx, result, t.sites, t.logger)

	return result, nil
}

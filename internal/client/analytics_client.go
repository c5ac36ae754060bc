package client

import (
	"context"
	"net/url"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

type AnalyticsClient struct {
	*base
}

func NewAnalyticsClient(cfg config.BackendConfig, opts Options) (*AnalyticsClient, error) {
	b, err := newBase("analytics", cfg, opts)
	if err != nil {
		return nil, err
	}
	return &AnalyticsClient{base: b}, nil
}

// GetSummary returns totals for period (7d, 30d, 90d). An empty period
// uses the backend default.
func (c *AnalyticsClient) GetSummary(ctx context.Context, period string) (*model.AnalyticsSummary, error) {
	var query url.Values
	if period != "" {
		query = url.Values{"period": {period}}
	}
	var result model.AnalyticsSummary
	if err := c.get(ctx, "/analytics/summary", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

package client

import (
	"context"
	"fmt"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

type SocialImportClient struct {
	*base
}

func NewSocialImportClient(cfg config.BackendConfig, opts Options) (*SocialImportClient, error) {
	b, err := newBase("social-import", cfg, opts)
	if err != nil {
		return nil, err
	}
	return &SocialImportClient{base: b}, nil
}

// InitiateImport starts scraping a profile. The backend answers with status
// INITIATED and an estimated time.
func (c *SocialImportClient) InitiateImport(ctx context.Context, req *model.ScrapeRequest) (*model.JobAccepted, error) {
	var result model.JobAccepted
	if err := c.post(ctx, "/api/social-import/scrape", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *SocialImportClient) GetImportStatus(ctx context.Context, jobID string) (*model.ImportStatus, error) {
	var result model.ImportStatus
	if err := c.get(ctx, fmt.Sprintf("/api/social-import/status/%s", escape(jobID)), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

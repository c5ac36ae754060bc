package client

import (
	"context"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

// ContentClient wraps single-piece generation, URL extraction and
// suggestions.
type ContentClient struct {
	*base
	extractPath string
}

func NewContentClient(cfg config.BackendConfig, opts Options) (*ContentClient, error) {
	b, err := newBase("content", cfg, opts)
	if err != nil {
		return nil, err
	}
	extractPath := cfg.ExtractPath
	if extractPath == "" {
		extractPath = "/content/extract"
	}
	return &ContentClient{base: b, extractPath: extractPath}, nil
}

func (c *ContentClient) GenerateContent(ctx context.Context, req *model.GenerateContentRequest) (*model.JobAccepted, error) {
	var result model.JobAccepted
	if err := c.post(ctx, "/content/generate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExtractContent fetches metadata and text of a single URL.
func (c *ContentClient) ExtractContent(ctx context.Context, req *model.ExtractRequest) (*model.ExtractResult, error) {
	var result model.ExtractResult
	if err := c.post(ctx, c.extractPath, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *ContentClient) ListSuggestions(ctx context.Context) ([]model.Suggestion, error) {
	var result model.SuggestionList
	if err := c.get(ctx, "/content/suggestions", nil, &result); err != nil {
		return nil, err
	}
	return result.Suggestions, nil
}

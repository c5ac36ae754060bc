package client

import (
	"context"
	"fmt"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

type TranscriptionClient struct {
	*base
}

func NewTranscriptionClient(cfg config.BackendConfig, opts Options) (*TranscriptionClient, error) {
	b, err := newBase("transcription", cfg, opts)
	if err != nil {
		return nil, err
	}
	return &TranscriptionClient{base: b}, nil
}

func (c *TranscriptionClient) StartTranscription(ctx context.Context, req *model.StartTranscriptionRequest) (*model.JobAccepted, error) {
	var result model.JobAccepted
	if err := c.post(ctx, "/transcription/start", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *TranscriptionClient) GetTranscriptionStatus(ctx context.Context, jobID string) (*model.TranscriptionStatus, error) {
	var result model.TranscriptionStatus
	if err := c.get(ctx, fmt.Sprintf("/transcription/%s/status", escape(jobID)), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

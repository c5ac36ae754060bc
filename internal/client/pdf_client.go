package client

import (
	"context"
	"fmt"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

type PDFClient struct {
	*base
}

func NewPDFClient(cfg config.BackendConfig, opts Options) (*PDFClient, error) {
	b, err := newBase("pdf", cfg, opts)
	if err != nil {
		return nil, err
	}
	return &PDFClient{base: b}, nil
}

func (c *PDFClient) StartPDFProcessing(ctx context.Context, req *model.StartPDFRequest) (*model.JobAccepted, error) {
	var result model.JobAccepted
	if err := c.post(ctx, "/pdf/start", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *PDFClient) GetPDFStatus(ctx context.Context, jobID string) (*model.PDFStatus, error) {
	var result model.PDFStatus
	if err := c.get(ctx, fmt.Sprintf("/pdf/status/%s", escape(jobID)), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

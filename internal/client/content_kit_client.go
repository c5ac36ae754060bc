package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

// ContentKitClient wraps the /content-kit resource family.
type ContentKitClient struct {
	*base
}

func NewContentKitClient(cfg config.BackendConfig, opts Options) (*ContentKitClient, error) {
	b, err := newBase("content-kit", cfg, opts)
	if err != nil {
		return nil, err
	}
	return &ContentKitClient{base: b}, nil
}

// GenerateContentKit submits a generation job. Any 2xx, including 202, is
// success.
func (c *ContentKitClient) GenerateContentKit(ctx context.Context, req *model.GenerateContentKitRequest) (*model.JobAccepted, error) {
	var result model.JobAccepted
	if err := c.post(ctx, "/content-kit/generate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *ContentKitClient) GetContentKitStatus(ctx context.Context, jobID string) (*model.ContentKitStatus, error) {
	var result model.ContentKitStatus
	if err := c.get(ctx, fmt.Sprintf("/content-kit/%s/status", escape(jobID)), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListContentKits returns one page. An empty nextToken requests the first
// page.
func (c *ContentKitClient) ListContentKits(ctx context.Context, limit int, nextToken string) (*model.ContentKitPage, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if nextToken != "" {
		query.Set("nextToken", nextToken)
	}
	var result model.ContentKitPage
	if err := c.get(ctx, "/content-kit", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *ContentKitClient) DeleteContentKit(ctx context.Context, jobID string) error {
	return c.delete(ctx, fmt.Sprintf("/content-kit/%s", escape(jobID)))
}

// Archive is a downloaded kit. Body must be closed by the caller.
type Archive struct {
	Body        io.ReadCloser
	ContentType string
	FileName    string
	Size        int64 // -1 when unknown
}

// DownloadContentKit fetches the kit archive as a binary stream.
func (c *ContentKitClient) DownloadContentKit(ctx context.Context, jobID string) (*Archive, error) {
	resp, err := c.stream(ctx, http.MethodGet, fmt.Sprintf("/content-kit/%s/download", escape(jobID)))
	if err != nil {
		return nil, err
	}

	name := "content-kit-" + jobID + ".zip"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Archive{
		Body:        resp.Body,
		ContentType: contentType,
		FileName:    name,
		Size:        resp.ContentLength,
	}, nil
}

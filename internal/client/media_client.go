package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

const defaultUploadTimeout = 10 * time.Minute

// MediaClient wraps /files and the raw upload to a presigned URL.
type MediaClient struct {
	*base
	uploadClient  *http.Client
	uploadTimeout time.Duration
}

func NewMediaClient(cfg config.BackendConfig, opts Options) (*MediaClient, error) {
	b, err := newBase("media", cfg, opts)
	if err != nil {
		return nil, err
	}
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &MediaClient{
		base:          b,
		uploadClient:  &http.Client{Transport: b.httpClient.Transport},
		uploadTimeout: timeout,
	}, nil
}

func (c *MediaClient) RequestUploadURL(ctx context.Context, req *model.UploadURLRequest) (*model.UploadURLResponse, error) {
	var result model.UploadURLResponse
	if err := c.post(ctx, "/files/upload-url", req, &result); err != nil {
		return nil, err
	}
	if result.UploadURL == "" || result.FileID == "" {
		return nil, c.unknown(errors.New("upload URL response is missing uploadUrl or fileId"))
	}
	return &result, nil
}

// Upload PUTs the file bytes to a presigned URL. No bearer token is sent.
// The whole transfer is bounded by the configured upload timeout.
func (c *MediaClient) Upload(ctx context.Context, uploadURL string, body io.Reader, size int64, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return c.unknown(fmt.Errorf("failed to create upload request: %w", err))
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("→ upload", zap.String("host", req.URL.Host), zap.Int64("size", size))
	resp, err := c.uploadClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &ServiceError{
				Service: c.service,
				Kind:    KindNetwork,
				Code:    "UPLOAD_TIMEOUT",
				Message: fmt.Sprintf("upload timed out after %s", c.uploadTimeout),
				Err:     err,
			}
		}
		return c.network(req, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("← upload", zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return &ServiceError{
			Service:    c.service,
			Kind:       KindServer,
			Message:    fmt.Sprintf("upload failed with status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}

func (c *MediaClient) ListFiles(ctx context.Context) ([]model.MediaFile, error) {
	var result model.MediaFileList
	if err := c.get(ctx, "/files", nil, &result); err != nil {
		return nil, err
	}
	return result.Files, nil
}

func (c *MediaClient) DeleteFile(ctx context.Context, fileID string) error {
	return c.delete(ctx, fmt.Sprintf("/files/%s", escape(fileID)))
}

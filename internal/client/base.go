package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/logging"
	"github.com/contentkit/studio/internal/metrics"
	"github.com/contentkit/studio/internal/session"
)

// ErrBaseURLMissing is the cause carried by requests made through a wrapper
// constructed without a base URL.
var ErrBaseURLMissing = errors.New("base URL is not configured")

// maxErrorBody bounds how much of a failed response is read for the error
// message.
const maxErrorBody = 64 << 10

// Options carries the collaborators every wrapper shares.
type Options struct {
	Session    *session.Session
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// base is the transport shared by every service wrapper.
type base struct {
	service    string
	baseURL    string
	httpClient *http.Client
	noRedirect *http.Client
	session    *session.Session
	logger     *zap.Logger
}

func newBase(service string, cfg config.BackendConfig, opts Options) (*base, error) {
	logger := logging.OrNop(opts.Logger).Named(service)

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.Strict {
			return nil, &ServiceError{Service: service, Kind: KindUnknown, Err: ErrBaseURLMissing}
		}
		logger.Warn("backend base URL is not configured; requests will fail")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	noRedirect := *httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	sess := opts.Session
	if sess == nil {
		sess = session.New(session.NewMemoryStore())
	}

	return &base{
		service:    service,
		baseURL:    baseURL,
		httpClient: httpClient,
		noRedirect: &noRedirect,
		session:    sess,
		logger:     logger,
	}, nil
}

func (b *base) get(ctx context.Context, path string, query url.Values, result any) error {
	return b.doJSON(ctx, http.MethodGet, path, query, nil, result)
}

func (b *base) post(ctx context.Context, path string, body, result any) error {
	return b.doJSON(ctx, http.MethodPost, path, nil, body, result)
}

func (b *base) delete(ctx context.Context, path string) error {
	return b.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// doJSON sends an authenticated JSON request and decodes a 2xx body into
// result. A nil result discards the body.
func (b *base) doJSON(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return b.unknown(fmt.Errorf("failed to marshal request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := b.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.send(b.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := b.checkStatus(ctx, req, resp); err != nil {
		return err
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return b.network(req, fmt.Errorf("failed to read response: %w", err))
	}
	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		if result != nil {
			return b.unknown(errors.New("empty response body"))
		}
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		b.logger.Warn("failed to decode response",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return b.unknown(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// stream sends an authenticated request and returns the 2xx response with
// its body unread. The caller closes the body.
func (b *base) stream(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := b.newRequest(ctx, method, path, nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.send(b.httpClient, req)
	if err != nil {
		return nil, err
	}
	if err := b.checkStatus(ctx, req, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// newRequest builds a request against the backend carrying the bearer token
// and a fresh request id. Missing configuration and missing or expired
// tokens fail here, before any network I/O.
func (b *base) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	if b.baseURL == "" {
		return nil, b.unknown(ErrBaseURLMissing)
	}

	token, err := b.session.AccessToken(ctx)
	if err != nil {
		kind := KindAuth
		if !errors.Is(err, session.ErrNoToken) && !errors.Is(err, session.ErrTokenExpired) {
			kind = KindUnknown
		}
		return nil, &ServiceError{Service: b.service, Kind: kind, Message: err.Error(), Err: err}
	}

	target := b.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, b.unknown(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (b *base) send(httpClient *http.Client, req *http.Request) (*http.Response, error) {
	requestID := req.Header.Get("X-Request-ID")
	b.logger.Debug("→ request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", requestID))

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.ObserveBackendRequest(b.service, req.Method, 0, time.Since(start))
		b.logger.Debug("✗ request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, b.network(req, err)
	}
	metrics.ObserveBackendRequest(b.service, req.Method, resp.StatusCode, time.Since(start))

	b.logger.Debug("← response",
		zap.Int("status", resp.StatusCode),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", requestID),
		zap.Duration("latency", time.Since(start)))
	return resp, nil
}

// checkStatus maps a non-2xx response to a ServiceError. A 401 also clears
// the session's tokens.
func (b *base) checkStatus(ctx context.Context, req *http.Request, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	code, message := parseErrorBody(data)
	if message == "" {
		message = fmt.Sprintf("%s request failed with status %d", b.service, resp.StatusCode)
	}

	kind := KindServer
	if resp.StatusCode == http.StatusUnauthorized {
		kind = KindAuth
		if err := b.session.ClearTokens(ctx); err != nil {
			b.logger.Warn("failed to clear session tokens", zap.Error(err))
		}
	}

	b.logger.Debug("request rejected",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.String("code", code),
		zap.String("message", message))

	return &ServiceError{
		Service:    b.service,
		Kind:       kind,
		Message:    message,
		StatusCode: resp.StatusCode,
		Code:       code,
	}
}

func (b *base) network(req *http.Request, err error) error {
	return &ServiceError{
		Service: b.service,
		Kind:    KindNetwork,
		Message: fmt.Sprintf("network error during %s %s", req.Method, req.URL.Path),
		Err:     err,
	}
}

func (b *base) unknown(err error) error {
	return &ServiceError{Service: b.service, Kind: KindUnknown, Message: err.Error(), Err: err}
}

// parseErrorBody understands {"message": ...}, {"error": "..."} and
// {"error": {"code": ..., "message": ...}}.
func parseErrorBody(data []byte) (code, message string) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ""
	}
	var body struct {
		Message string          `json:"message"`
		Code    string          `json:"code"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", ""
	}
	code, message = body.Code, body.Message
	if len(body.Error) == 0 {
		return code, message
	}

	var text string
	if err := json.Unmarshal(body.Error, &text); err == nil {
		if message == "" {
			message = text
		}
		return code, message
	}
	var detail struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Error, &detail); err == nil {
		if detail.Code != "" {
			code = detail.Code
		}
		if detail.Message != "" {
			message = detail.Message
		}
	}
	return code, message
}

func escape(id string) string {
	return url.PathEscape(id)
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
)

// OAuthClient wraps connected social accounts and direct posting.
type OAuthClient struct {
	*base
}

func NewOAuthClient(cfg config.BackendConfig, opts Options) (*OAuthClient, error) {
	b, err := newBase("oauth", cfg, opts)
	if err != nil {
		return nil, err
	}
	return &OAuthClient{base: b}, nil
}

func (c *OAuthClient) ListAccounts(ctx context.Context) ([]model.SocialAccount, error) {
	var result model.SocialAccountList
	if err := c.get(ctx, "/oauth/accounts", nil, &result); err != nil {
		return nil, err
	}
	return result.Accounts, nil
}

// InitConnect returns the provider authorization URL for platform. The
// backend either redirects to it, which is not followed, or returns it as
// JSON.
func (c *OAuthClient) InitConnect(ctx context.Context, platform model.Platform) (string, error) {
	if !platform.Valid() {
		return "", NewValidationError(c.service, "INVALID_PLATFORM", fmt.Sprintf("unsupported platform %q", platform))
	}
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/oauth/%s/init", escape(string(platform))), nil, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.send(c.noRedirect, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		if location == "" {
			return "", c.unknown(errors.New("redirect without Location header"))
		}
		return location, nil
	}
	if err := c.checkStatus(ctx, req, resp); err != nil {
		return "", err
	}

	var body struct {
		URL          string `json:"url"`
		AuthorizeURL string `json:"authorizationUrl"`
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.network(req, err)
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", c.unknown(fmt.Errorf("failed to decode response: %w", err))
	}
	if body.URL != "" {
		return body.URL, nil
	}
	if body.AuthorizeURL != "" {
		return body.AuthorizeURL, nil
	}
	return "", c.unknown(errors.New("response carries no authorization URL"))
}

func (c *OAuthClient) Disconnect(ctx context.Context, platform model.Platform) error {
	return c.delete(ctx, fmt.Sprintf("/oauth/accounts/%s", escape(string(platform))))
}

func (c *OAuthClient) Post(ctx context.Context, platform model.Platform, req *model.PostRequest) (*model.PostResult, error) {
	var result model.PostResult
	if err := c.post(ctx, fmt.Sprintf("/social/post/%s", escape(string(platform))), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

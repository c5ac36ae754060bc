package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/contentkit/studio/internal/config"
)

const metadataTimeout = 30 * time.Second

// TokenVerifier validates a bearer token presented to the gateway.
type TokenVerifier interface {
	Validate(tokenString string) (*Claims, error)
}

// Claims are the OIDC claims the gateway relies on.
type Claims struct {
	UserID            string `json:"sub"`
	Email             string `json:"email,omitempty"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	jwt.RegisteredClaims
}

// providerMetadata is the part of the discovery document the gateway reads.
type providerMetadata struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// OIDCVerifier accepts tokens signed with the provider's published keys,
// issued by the provider and addressed to the configured client.
type OIDCVerifier struct {
	keys   jwt.Keyfunc
	parser *jwt.Parser
}

// NewOIDCVerifier reads the provider metadata of cfg's issuer and keeps
// its key set refreshed in the background until ctx is done.
func NewOIDCVerifier(ctx context.Context, cfg config.ZitadelConfig, httpClient *http.Client) (*OIDCVerifier, error) {
	issuer := cfg.IssuerURL()
	if issuer == "" {
		return nil, errors.New("oidc issuer is not configured")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	lookupCtx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()
	meta, err := fetchProviderMetadata(lookupCtx, httpClient, issuer)
	if err != nil {
		return nil, err
	}
	// The provider's own issuer string is what its tokens carry.
	if meta.Issuer != "" {
		issuer = meta.Issuer
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{meta.JWKSURI})
	if err != nil {
		return nil, fmt.Errorf("oidc key set %s: %w", meta.JWKSURI, err)
	}
	return newOIDCVerifier(jwks.Keyfunc, issuer, cfg.ClientID), nil
}

func newOIDCVerifier(keys jwt.Keyfunc, issuer, audience string) *OIDCVerifier {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &OIDCVerifier{keys: keys, parser: jwt.NewParser(opts...)}
}

func (v *OIDCVerifier) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(tokenString, claims, v.keys); err != nil {
		return nil, fmt.Errorf("token rejected: %w", err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token rejected: %w", jwt.ErrTokenInvalidSubject)
	}
	return claims, nil
}

func fetchProviderMetadata(ctx context.Context, httpClient *http.Client, issuer string) (*providerMetadata, error) {
	endpoint := strings.TrimRight(issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oidc discovery: %s answered status %d", endpoint, resp.StatusCode)
	}

	var meta providerMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	if meta.JWKSURI == "" {
		return nil, fmt.Errorf("oidc discovery: %s has no jwks_uri", endpoint)
	}
	return &meta, nil
}

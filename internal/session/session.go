package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Fixed storage keys.
const (
	KeyAccessToken          = "auth_token"
	KeyRefreshToken         = "refresh_token"
	KeyDismissedSuggestions = "dismissed_suggestions"
	KeyLastMilestoneCount   = "last_milestone_count"
)

var (
	ErrNoToken      = errors.New("authentication missing")
	ErrTokenExpired = errors.New("authentication expired")
)

// Session is the client-side state shared by every service wrapper: auth
// tokens and a few cached UI flags. It is passed to wrappers at
// construction instead of being looked up globally.
type Session struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

// NewWithToken returns a session over a fresh memory store holding token.
func NewWithToken(token string) *Session {
	s := New(NewMemoryStore())
	_ = s.store.Set(context.Background(), KeyAccessToken, token)
	return s
}

// AccessToken returns the stored bearer token. A missing token yields
// ErrNoToken; a JWT whose exp claim has passed yields ErrTokenExpired.
// Opaque tokens are returned as-is.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	token, ok, err := s.store.Get(ctx, KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if !ok || token == "" {
		return "", ErrNoToken
	}
	if expired(token, s.now()) {
		return "", ErrTokenExpired
	}
	return token, nil
}

func (s *Session) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.store.Set(ctx, KeyAccessToken, access); err != nil {
		return err
	}
	if refresh == "" {
		return s.store.Delete(ctx, KeyRefreshToken)
	}
	return s.store.Set(ctx, KeyRefreshToken, refresh)
}

func (s *Session) ClearTokens(ctx context.Context) error {
	return s.store.Delete(ctx, KeyAccessToken, KeyRefreshToken)
}

func (s *Session) DismissedSuggestions(ctx context.Context) ([]string, error) {
	raw, ok, err := s.store.Get(ctx, KeyDismissedSuggestions)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to parse dismissed suggestions: %w", err)
	}
	return ids, nil
}

func (s *Session) DismissSuggestion(ctx context.Context, id string) error {
	ids, err := s.DismissedSuggestions(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	data, err := json.Marshal(append(ids, id))
	if err != nil {
		return err
	}
	return s.store.Set(ctx, KeyDismissedSuggestions, string(data))
}

func (s *Session) LastSeenMilestones(ctx context.Context) (int, error) {
	raw, ok, err := s.store.Get(ctx, KeyLastMilestoneCount)
	if err != nil || !ok || raw == "" {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid milestone count %q: %w", raw, err)
	}
	return n, nil
}

func (s *Session) SetLastSeenMilestones(ctx context.Context, n int) error {
	return s.store.Set(ctx, KeyLastMilestoneCount, strconv.Itoa(n))
}

// expired reports whether token is a JWT carrying an exp claim in the past.
// The signature is not checked; the backend remains the authority.
func expired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

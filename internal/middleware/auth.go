package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/auth"
	"github.com/contentkit/studio/pkg/response"
)

const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"

	localUserID = "userId"
	localEmail  = "email"
	localToken  = "token"
)

var (
	errInvalidToken      = errors.New("invalid or expired token")
	errAuthNotConfigured = errors.New("authentication not configured")
)

type AuthMiddleware struct {
	verifier  auth.TokenVerifier
	jwtSecret string // legacy HMAC tokens
}

// NewAuthMiddleware accepts tokens from verifier, falling back to HMAC
// tokens signed with jwtSecret when it is set. Either may be empty.
func NewAuthMiddleware(verifier auth.TokenVerifier, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, jwtSecret: jwtSecret}
}

// Authenticate validates the bearer token. WebSocket upgrades may pass it
// as the access_token query parameter instead, since browsers cannot set
// headers on them.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return response.Unauthorized(c, "Missing authorization header")
		}
		if tokenString == "" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		userID, email, err := m.Identify(tokenString)
		if errors.Is(err, errAuthNotConfigured) {
			return response.Unauthorized(c, "Authentication not configured")
		}
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}
		c.Locals(localUserID, userID)
		c.Locals(localEmail, email)
		c.Locals(localToken, tokenString)
		return c.Next()
	}
}

// Identify resolves the user a token belongs to.
func (m *AuthMiddleware) Identify(tokenString string) (userID, email string, err error) {
	if m.verifier != nil {
		claims, verr := m.verifier.Validate(tokenString)
		if verr == nil {
			return claims.UserID, claims.Email, nil
		}
		if m.jwtSecret == "" {
			return "", "", errInvalidToken
		}
	}
	if m.jwtSecret != "" {
		claims, lerr := auth.ValidateLegacyToken(tokenString, m.jwtSecret)
		if lerr != nil {
			return "", "", errInvalidToken
		}
		return claims.UserID, claims.Email, nil
	}
	return "", "", errAuthNotConfigured
}

// ForwardedIdentity trusts the X-User-* headers a reverse proxy sets after
// calling the verify endpoint. The bearer token still travels in the
// Authorization header and is forwarded to the backend.
func ForwardedIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get(HeaderUserID)
		if userID == "" {
			return response.Unauthorized(c, "Missing user identity headers")
		}
		tokenString, _ := bearerToken(c)
		c.Locals(localUserID, userID)
		c.Locals(localEmail, c.Get(HeaderUserEmail))
		c.Locals(localToken, tokenString)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(c) && c.Query("access_token") != "" {
			return c.Query("access_token"), true
		}
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true
	}
	return parts[1], true
}

func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(localUserID).(string); ok {
		return userID
	}
	return ""
}

func GetUserEmail(c *fiber.Ctx) string {
	if email, ok := c.Locals(localEmail).(string); ok {
		return email
	}
	return ""
}

// GetToken returns the bearer token the request was authenticated with.
// The gateway forwards it to the backend.
func GetToken(c *fiber.Ctx) string {
	if token, ok := c.Locals(localToken).(string); ok {
		return token
	}
	return ""
}

package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/middleware"
)

// AuthHandler answers forward-auth checks from a reverse proxy in front of
// the gateway.
type AuthHandler struct {
	auth *middleware.AuthMiddleware
}

func NewAuthHandler(auth *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Verify handles GET /auth/verify. It returns 200 with X-User-* headers
// when the bearer token is valid and 401 otherwise.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	userID, email, err := h.auth.Identify(parts[1])
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	c.Set(middleware.HeaderUserID, userID)
	c.Set(middleware.HeaderUserEmail, email)
	return c.SendStatus(fiber.StatusOK)
}

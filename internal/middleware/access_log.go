package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccessLog writes one line per request.
func AccessLog(logger *zap.Logger) fiber.Handler {
	logger = logger.Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := ""
		if c.Route() != nil {
			route = c.Route().Path
		}
		logger.Info("http_access",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", c.Response().StatusCode()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("user_id", GetUserID(c)),
			zap.String("client_ip", c.IP()),
		)
		return err
	}
}

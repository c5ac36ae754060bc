package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Health handles GET /health. Redis is reported but does not fail the
// check: the gateway still proxies without it.
func Health(redisClient *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok"}
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				status["redis"] = "unavailable"
			} else {
				status["redis"] = "ok"
			}
		}
		return c.JSON(status)
	}
}

// Metrics handles GET /metrics
func Metrics() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

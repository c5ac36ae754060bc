package handler

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/middleware"
	ws "github.com/contentkit/studio/internal/websocket"
	"github.com/contentkit/studio/pkg/response"
)

const localTopic = "topic"

// StreamHandler upgrades subscriptions to job and notification streams.
type StreamHandler struct {
	hub  *ws.Hub
	jobs *Jobs
}

func NewStreamHandler(hub *ws.Hub, jobs *Jobs) *StreamHandler {
	return &StreamHandler{hub: hub, jobs: jobs}
}

// Upgrade rejects plain HTTP requests to /ws routes.
func (h *StreamHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// AuthorizeJob lets only the user that started a running job subscribe
// to it.
func (h *StreamHandler) AuthorizeJob(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	owner, ok := h.jobs.Owner(jobID)
	if !ok || owner != middleware.GetUserID(c) {
		return response.NotFound(c, "Job not found")
	}
	c.Locals(localTopic, jobID)
	return c.Next()
}

func (h *StreamHandler) AuthorizeNotifications(c *fiber.Ctx) error {
	c.Locals(localTopic, ws.UserTopic(middleware.GetUserID(c)))
	return c.Next()
}

// Serve handles GET /ws/jobs/:jobId and GET /ws/notifications
func (h *StreamHandler) Serve() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		topic, _ := c.Locals(localTopic).(string)
		h.hub.HandleConnection(c, topic)
	})
}

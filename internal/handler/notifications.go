package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/middleware"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/pkg/response"
)

type NotificationLister interface {
	List(ctx context.Context, userID string) ([]model.Notification, error)
	Clear(ctx context.Context, userID string) error
}

type NotificationHandler struct {
	notifications NotificationLister
}

func NewNotificationHandler(notifications NotificationLister) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	items, err := h.notifications.List(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, fiber.Map{"notifications": items})
}

// Clear handles DELETE /api/notifications
func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	if err := h.notifications.Clear(c.UserContext(), middleware.GetUserID(c)); err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.NoContent(c)
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/service"
	"github.com/contentkit/studio/pkg/response"
)

const defaultPeriod = "30d"

// InsightHandler serves suggestions, milestones and the analytics summary.
type InsightHandler struct {
	studio *Studio
}

func NewInsightHandler(studio *Studio) *InsightHandler {
	return &InsightHandler{studio: studio}
}

// Suggestions handles GET /api/suggestions
func (h *InsightHandler) Suggestions(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	suggestions, err := service.NewSuggestionService(sc.clients.Content, sc.session).List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"suggestions": suggestions})
}

// Dismiss handles POST /api/suggestions/:id/dismiss
func (h *InsightHandler) Dismiss(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := service.NewSuggestionService(sc.clients.Content, sc.session).Dismiss(c.UserContext(), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

// Milestones handles GET /api/milestones?period=
func (h *InsightHandler) Milestones(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	fresh, err := service.NewMilestoneService(sc.clients.Analytics, sc.session).Check(c.UserContext(), c.Query("period", defaultPeriod))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"milestones": fresh})
}

// Analytics handles GET /api/analytics?period=
func (h *InsightHandler) Analytics(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	summary, err := sc.clients.Analytics.GetSummary(c.UserContext(), c.Query("period", defaultPeriod))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, summary)
}

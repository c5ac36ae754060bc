package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/service"
	"github.com/contentkit/studio/pkg/response"
)

type ImportHandler struct {
	studio *Studio
	jobs   *Jobs
}

func NewImportHandler(studio *Studio, jobs *Jobs) *ImportHandler {
	return &ImportHandler{studio: studio, jobs: jobs}
}

// Start handles POST /api/imports
func (h *ImportHandler) Start(c *fiber.Ctx) error {
	var req model.ScrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	ctx, cancel := h.jobs.Context()
	handle, err := sc.importService().Import(ctx, sc.userID, &req)
	if err != nil {
		cancel()
		return response.FromError(c, err)
	}
	follow(h.jobs, sc.userID, service.FlowSocialImport, handle, cancel)

	return response.Accepted(c, jobAccepted(handle.JobID()))
}

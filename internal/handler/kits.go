package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/service"
	"github.com/contentkit/studio/pkg/response"
)

type KitHandler struct {
	studio *Studio
	jobs   *Jobs
}

func NewKitHandler(studio *Studio, jobs *Jobs) *KitHandler {
	return &KitHandler{studio: studio, jobs: jobs}
}

// Generate handles POST /api/kits
func (h *KitHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateContentKitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	req.InputData.UserID = sc.userID

	ctx, cancel := h.jobs.Context()
	handle, err := sc.kitService().Generate(ctx, &req)
	if err != nil {
		cancel()
		return response.FromError(c, err)
	}
	follow(h.jobs, sc.userID, service.FlowContentKit, handle, cancel)

	return response.Accepted(c, jobAccepted(handle.JobID()))
}

// Status handles GET /api/kits/:jobId
func (h *KitHandler) Status(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	status, err := sc.kitService().Status(c.UserContext(), c.Params("jobId"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, status)
}

// List handles GET /api/kits?limit=&nextToken=
func (h *KitHandler) List(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	limit := c.QueryInt("limit", service.DefaultPageSize)
	if limit < 1 || limit > 100 {
		return response.ValidationError(c, "limit must be between 1 and 100", nil)
	}
	page, err := sc.clients.ContentKit.ListContentKits(c.UserContext(), limit, c.Query("nextToken"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, page)
}

// Delete handles DELETE /api/kits/:jobId
func (h *KitHandler) Delete(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := sc.kitService().Delete(c.UserContext(), c.Params("jobId")); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

// Download handles GET /api/kits/:jobId/download
func (h *KitHandler) Download(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	info, err := sc.kitService().Download(c.UserContext(), c.Params("jobId"), c.Response().BodyWriter())
	if err != nil {
		c.Response().ResetBody()
		return response.FromError(c, err)
	}
	c.Set(fiber.HeaderContentType, info.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", info.FileName))
	return nil
}

// Share handles POST /api/kits/:jobId/share
func (h *KitHandler) Share(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	url, err := sc.kitService().ShareDownload(c.UserContext(), sc.userID, c.Params("jobId"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"url": url})
}

func jobAccepted(jobID string) fiber.Map {
	return fiber.Map{
		"jobId":  jobID,
		"status": model.JobStatusProcessing,
		"stream": "/ws/jobs/" + jobID,
	}
}

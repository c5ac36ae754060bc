package handler

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/media"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/service"
	"github.com/contentkit/studio/pkg/response"
)

const (
	targetLibrary       = "library"
	targetKnowledgeBase = "knowledge-base"
)

type UploadHandler struct {
	studio *Studio
	jobs   *Jobs
}

func NewUploadHandler(studio *Studio, jobs *Jobs) *UploadHandler {
	return &UploadHandler{studio: studio, jobs: jobs}
}

// Upload handles POST /api/uploads (multipart: file, target, title,
// durationSeconds, language)
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	var opts service.PipelineOptions
	target := c.FormValue("target", targetLibrary)
	switch target {
	case targetLibrary:
		opts = service.MediaLibraryOptions
	case targetKnowledgeBase:
		opts = service.KnowledgeBaseOptions
	default:
		return response.ValidationError(c, "target must be library or knowledge-base", nil)
	}

	var duration time.Duration
	if raw := c.FormValue("durationSeconds"); raw != "" {
		secs, err := strconv.ParseFloat(raw, 64)
		if err != nil || secs < 0 {
			return response.ValidationError(c, "durationSeconds must be a non-negative number", nil)
		}
		duration = time.Duration(secs * float64(time.Second))
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to read upload")
	}
	defer f.Close()

	head := make([]byte, media.SniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return response.ServiceError(c, "Failed to read upload")
	}
	head = head[:n]

	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}

	ctx, cancel := h.jobs.Context()
	job, err := sc.pipeline(target, opts).Process(ctx, service.Upload{
		File: media.File{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Duration:    duration,
			Head:        head,
		},
		Body:     io.MultiReader(bytes.NewReader(head), f),
		UserID:   sc.userID,
		Title:    c.FormValue("title"),
		Language: c.FormValue("language"),
	})
	if err != nil {
		cancel()
		return response.FromError(c, err)
	}
	flow := service.FlowTranscription
	if job.Category == model.FileCategoryPDF {
		flow = service.FlowPDF
	}
	follow(h.jobs, sc.userID, flow, job.Handle, cancel)

	accepted := jobAccepted(job.Handle.JobID())
	accepted["fileId"] = job.FileID
	accepted["category"] = job.Category
	return response.Accepted(c, accepted)
}

// Files handles GET /api/files
func (h *UploadHandler) Files(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	files, err := sc.clients.Media.ListFiles(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"files": files})
}

// DeleteFile handles DELETE /api/files/:fileId
func (h *UploadHandler) DeleteFile(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := sc.clients.Media.DeleteFile(c.UserContext(), c.Params("fileId")); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/pkg/response"
)

// ResourceHandler passes the request/response families that need no
// polling straight through to their wrappers.
type ResourceHandler struct {
	studio *Studio
}

func NewResourceHandler(studio *Studio) *ResourceHandler {
	return &ResourceHandler{studio: studio}
}

// Accounts handles GET /api/accounts
func (h *ResourceHandler) Accounts(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	accounts, err := sc.clients.OAuth.ListAccounts(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"accounts": accounts})
}

// Connect handles POST /api/accounts/:platform/connect
func (h *ResourceHandler) Connect(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	url, err := sc.clients.OAuth.InitConnect(c.UserContext(), model.Platform(c.Params("platform")))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"url": url})
}

// Disconnect handles DELETE /api/accounts/:platform
func (h *ResourceHandler) Disconnect(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := sc.clients.OAuth.Disconnect(c.UserContext(), model.Platform(c.Params("platform"))); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

// Post handles POST /api/accounts/:platform/posts
func (h *ResourceHandler) Post(c *fiber.Ctx) error {
	var req model.PostRequest
	if ok, err := h.studio.parseBody(c, &req); !ok {
		return err
	}
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	result, err := sc.clients.OAuth.Post(c.UserContext(), model.Platform(c.Params("platform")), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, result)
}

// Schedule handles POST /api/schedule
func (h *ResourceHandler) Schedule(c *fiber.Ctx) error {
	var req model.SchedulePostRequest
	if ok, err := h.studio.parseBody(c, &req); !ok {
		return err
	}
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	post, err := sc.clients.Scheduling.SchedulePost(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, post)
}

// Scheduled handles GET /api/schedule
func (h *ResourceHandler) Scheduled(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	posts, err := sc.clients.Scheduling.ListScheduledPosts(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"posts": posts})
}

// CancelScheduled handles DELETE /api/schedule/:id
func (h *ResourceHandler) CancelScheduled(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := sc.clients.Scheduling.CancelScheduledPost(c.UserContext(), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

// Documents handles GET /api/knowledge-base/documents
func (h *ResourceHandler) Documents(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	docs, err := sc.clients.KnowledgeBase.ListDocuments(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"documents": docs})
}

// DeleteDocument handles DELETE /api/knowledge-base/documents/:id
func (h *ResourceHandler) DeleteDocument(c *fiber.Ctx) error {
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := sc.clients.KnowledgeBase.DeleteDocument(c.UserContext(), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

// Search handles POST /api/knowledge-base/search
func (h *ResourceHandler) Search(c *fiber.Ctx) error {
	var req model.SearchRequest
	if ok, err := h.studio.parseBody(c, &req); !ok {
		return err
	}
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	results, err := sc.clients.KnowledgeBase.Search(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, fiber.Map{"results": results})
}

// GenerateContent handles POST /api/content/generate
func (h *ResourceHandler) GenerateContent(c *fiber.Ctx) error {
	var req model.GenerateContentRequest
	if ok, err := h.studio.parseBody(c, &req); !ok {
		return err
	}
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	accepted, err := sc.clients.Content.GenerateContent(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Accepted(c, accepted)
}

// Extract handles POST /api/content/extract
func (h *ResourceHandler) Extract(c *fiber.Ctx) error {
	var req model.ExtractRequest
	if ok, err := h.studio.parseBody(c, &req); !ok {
		return err
	}
	sc, err := h.studio.scope(c)
	if err != nil {
		return response.FromError(c, err)
	}
	result, err := sc.clients.Content.ExtractContent(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

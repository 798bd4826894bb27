package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// BlogHandler exposes published blog posts.
type BlogHandler struct {
	service service.BlogService
	logger  zerolog.Logger
}

// NewBlogHandler constructs the handler.
func NewBlogHandler(service service.BlogService, logger zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		service: service,
		logger:  logger.With().Str("component", "blog_handler").Logger(),
	}
}

// Register wires public blog routes.
func (h *BlogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:slug", h.get)
}

func (h *BlogHandler) list(c *fiber.Ctx) error {
	req, err := parseContentListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.ListPublished(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list blog posts")
	}
	return utils.OK(c, result.Items, "blog posts retrieved", fiber.Map{"pagination": result.Pagination})
}

func (h *BlogHandler) get(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Params("slug"))
	if slug == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid slug")
	}

	post, err := h.service.GetPublished(requestContext(c), slug)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load blog post")
	}
	return utils.SendSuccess(c, "blog post retrieved", post)
}

// AdminBlogHandler manages drafts and published posts.
type AdminBlogHandler struct {
	service service.BlogService
	logger  zerolog.Logger
}

// NewAdminBlogHandler constructs the handler.
func NewAdminBlogHandler(service service.BlogService, logger zerolog.Logger) *AdminBlogHandler {
	return &AdminBlogHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_blog_handler").Logger(),
	}
}

// Register attaches admin blog routes.
func (h *AdminBlogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminBlogHandler) list(c *fiber.Ctx) error {
	req, err := parseContentListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.AdminList(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list blog posts")
	}
	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters": fiber.Map{
			"search": req.Search,
			"tags":   req.Tags,
		},
	}
	return utils.OK(c, result.Items, "blog posts retrieved", meta)
}

func (h *AdminBlogHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	post, err := h.service.AdminGet(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load blog post")
	}
	return utils.SendSuccess(c, "blog post retrieved", post)
}

func (h *AdminBlogHandler) create(c *fiber.Ctx) error {
	var payload dto.BlogPostRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	post, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create blog post")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "blog post created", post)
}

func (h *AdminBlogHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.BlogPostRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	post, err := h.service.Update(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update blog post")
	}
	return utils.SendSuccess(c, "blog post updated", post)
}

func (h *AdminBlogHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(requestContext(c), id, actorFromContext(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete blog post")
	}
	return utils.SendSuccess(c, "blog post deleted", fiber.Map{"id": id})
}

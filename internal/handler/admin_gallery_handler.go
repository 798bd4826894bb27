package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// AdminGalleryHandler manages gallery admin endpoints.
type AdminGalleryHandler struct {
	service service.GalleryService
	logger  zerolog.Logger
}

// NewAdminGalleryHandler constructs the handler.
func NewAdminGalleryHandler(service service.GalleryService, logger zerolog.Logger) *AdminGalleryHandler {
	return &AdminGalleryHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_gallery_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminGalleryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminGalleryHandler) list(c *fiber.Ctx) error {
	req, err := parseContentListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list gallery items")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters": fiber.Map{
			"search": req.Search,
			"tags":   req.Tags,
		},
	}
	return utils.OK(c, result.Items, "gallery items retrieved", meta)
}

func (h *AdminGalleryHandler) create(c *fiber.Ctx) error {
	var payload dto.GalleryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	item, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create gallery item")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "gallery item created", item)
}

func (h *AdminGalleryHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.GalleryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	item, err := h.service.Update(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update gallery item")
	}
	return utils.SendSuccess(c, "gallery item updated", item)
}

func (h *AdminGalleryHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(requestContext(c), id, actorFromContext(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete gallery item")
	}
	return utils.SendSuccess(c, "gallery item deleted", fiber.Map{"id": id})
}

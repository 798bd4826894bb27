package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// HomepageHandler serves landing page sections.
type HomepageHandler struct {
	service service.HomepageService
	logger  zerolog.Logger
}

// NewHomepageHandler constructs the handler.
func NewHomepageHandler(service service.HomepageService, logger zerolog.Logger) *HomepageHandler {
	return &HomepageHandler{
		service: service,
		logger:  logger.With().Str("component", "homepage_handler").Logger(),
	}
}

// Register wires the public route.
func (h *HomepageHandler) Register(router fiber.Router) {
	router.Get("", h.sections(true))
}

// RegisterAdmin wires section management.
func (h *HomepageHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.sections(false))
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *HomepageHandler) sections(visibleOnly bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sections, err := h.service.Sections(requestContext(c), visibleOnly)
		if err != nil {
			return respondError(c, h.logger, err, "failed to load homepage")
		}
		return utils.SendSuccess(c, "homepage retrieved", sections)
	}
}

func (h *HomepageHandler) create(c *fiber.Ctx) error {
	var payload dto.HomepageSectionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	section, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create section")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "section created", section)
}

func (h *HomepageHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.HomepageSectionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	section, err := h.service.Update(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update section")
	}
	return utils.SendSuccess(c, "section updated", section)
}

func (h *HomepageHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(requestContext(c), id, actorFromContext(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete section")
	}
	return utils.SendSuccess(c, "section deleted", fiber.Map{"id": id})
}

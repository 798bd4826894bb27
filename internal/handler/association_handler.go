package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// AssociationHandler lists chapters publicly and lets administrators maintain them.
type AssociationHandler struct {
	service service.AssociationService
	logger  zerolog.Logger
}

// NewAssociationHandler constructs the handler.
func NewAssociationHandler(service service.AssociationService, logger zerolog.Logger) *AssociationHandler {
	return &AssociationHandler{
		service: service,
		logger:  logger.With().Str("component", "association_handler").Logger(),
	}
}

// Register wires the public listing.
func (h *AssociationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

// RegisterAdmin wires the management routes.
func (h *AssociationHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
}

func (h *AssociationHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list associations")
	}
	return utils.SendSuccess(c, "associations retrieved", items)
}

func (h *AssociationHandler) create(c *fiber.Ctx) error {
	var payload dto.AssociationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	item, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create association")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "association created", item)
}

func (h *AssociationHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.AssociationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	item, err := h.service.Update(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update association")
	}
	return utils.SendSuccess(c, "association updated", item)
}

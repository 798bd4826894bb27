package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// CampHandler exposes camp listings and registrations.
type CampHandler struct {
	service service.CampService
	logger  zerolog.Logger
}

// NewCampHandler constructs the handler.
func NewCampHandler(service service.CampService, logger zerolog.Logger) *CampHandler {
	return &CampHandler{
		service: service,
		logger:  logger.With().Str("component", "camp_handler").Logger(),
	}
}

// Register wires member-facing camp routes.
func (h *CampHandler) Register(router fiber.Router) {
	router.Get("", h.listOpen)
	router.Post("/:id/registrations", h.register)
}

// RegisterAdmin wires camp management routes.
func (h *CampHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Get("/:id/registrations", h.registrations)
	router.Post("/:id/registrations/bulk", h.bulkRegister)
}

func (h *CampHandler) listOpen(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	items, meta, err := h.service.ListOpen(requestContext(c), page, pageSize)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list camps")
	}
	return utils.OK(c, items, "camps retrieved", fiber.Map{"pagination": meta})
}

func (h *CampHandler) register(c *fiber.Ctx) error {
	campID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid camp id")
	}

	var payload dto.CampRegistrationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	registration, err := h.service.Register(requestContext(c), campID, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to register for camp")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registered for camp", registration)
}

func (h *CampHandler) create(c *fiber.Ctx) error {
	var payload dto.CampRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	camp, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create camp")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "camp created", camp)
}

func (h *CampHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid camp id")
	}
	var payload dto.CampRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	camp, err := h.service.Update(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update camp")
	}
	return utils.SendSuccess(c, "camp updated", camp)
}

func (h *CampHandler) registrations(c *fiber.Ctx) error {
	campID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid camp id")
	}
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	items, meta, err := h.service.ListRegistrations(requestContext(c), campID, page, pageSize)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list registrations")
	}
	return utils.OK(c, items, "registrations retrieved", fiber.Map{"pagination": meta})
}

func (h *CampHandler) bulkRegister(c *fiber.Ctx) error {
	campID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid camp id")
	}
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.BulkRegister(requestContext(c), campID, file, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to import registrations")
	}
	return utils.SendSuccess(c, "registrations imported", result)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// AdvertisementHandler serves sponsored banners.
type AdvertisementHandler struct {
	service service.AdvertisementService
	logger  zerolog.Logger
}

// NewAdvertisementHandler constructs the handler.
func NewAdvertisementHandler(service service.AdvertisementService, logger zerolog.Logger) *AdvertisementHandler {
	return &AdvertisementHandler{
		service: service,
		logger:  logger.With().Str("component", "advertisement_handler").Logger(),
	}
}

// Register wires the public route. Only live ads are returned.
func (h *AdvertisementHandler) Register(router fiber.Router) {
	router.Get("", h.live)
}

// RegisterAdmin wires advertisement management.
func (h *AdvertisementHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdvertisementHandler) live(c *fiber.Ctx) error {
	ads, err := h.service.Live(requestContext(c), c.Query("placement"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load advertisements")
	}
	return utils.SendSuccess(c, "advertisements retrieved", ads)
}

func (h *AdvertisementHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	placement := c.Query("placement")
	result, err := h.service.List(requestContext(c), placement, page, pageSize)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list advertisements")
	}
	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters":    fiber.Map{"placement": placement},
	}
	return utils.OK(c, result.Items, "advertisements retrieved", meta)
}

func (h *AdvertisementHandler) create(c *fiber.Ctx) error {
	var payload dto.AdvertisementRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ad, err := h.service.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create advertisement")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "advertisement created", ad)
}

func (h *AdvertisementHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.AdvertisementRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ad, err := h.service.Update(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update advertisement")
	}
	return utils.SendSuccess(c, "advertisement updated", ad)
}

func (h *AdvertisementHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(requestContext(c), id, actorFromContext(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete advertisement")
	}
	return utils.SendSuccess(c, "advertisement deleted", fiber.Map{"id": id})
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// GalleryHandler serves the public gallery.
type GalleryHandler struct {
	service service.GalleryService
	logger  zerolog.Logger
}

// NewGalleryHandler constructs the handler.
func NewGalleryHandler(service service.GalleryService, logger zerolog.Logger) *GalleryHandler {
	return &GalleryHandler{
		service: service,
		logger:  logger.With().Str("component", "gallery_handler").Logger(),
	}
}

// Register wires gallery routes.
func (h *GalleryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func parseContentListRequest(c *fiber.Ctx) (dto.ContentListRequest, error) {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return dto.ContentListRequest{}, err
	}
	return dto.ContentListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Tags:     splitAndTrim(c.Query("tags")),
	}, nil
}

func (h *GalleryHandler) list(c *fiber.Ctx) error {
	req, err := parseContentListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list gallery items")
	}
	return utils.SendSuccess(c, "gallery items retrieved", result)
}

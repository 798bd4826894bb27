package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for seeding data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("", h.bootstrap)
}

func (h *SeedHandler) bootstrap(c *fiber.Ctx) error {
	report, err := h.service.Bootstrap(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "seed operation failed")
	}

	return utils.SendSuccess(c, "seed completed", fiber.Map{
		"superadmin_created": report.SuperadminCreated,
		"homepage_sections":  report.HomepageSections,
	})
}

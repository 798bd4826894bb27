package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// ExportHandler streams xlsx exports of admin listings.
type ExportHandler struct {
	service service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register wires export routes. Filters mirror the matching list endpoints.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/users", h.users)
	router.Get("/payments", h.payments)
	router.Get("/exam-results", h.examResults)
	router.Get("/camp-registrations", h.campRegistrations)
}

func (h *ExportHandler) users(c *fiber.Ctx) error {
	associationID, err := parseQueryUint(c, "association_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid association_id")
	}
	req := dto.AdminUserListRequest{
		Search:        c.Query("search"),
		Role:          c.Query("role"),
		Status:        c.Query("status"),
		AssociationID: associationID,
	}

	export, err := h.service.Users(requestContext(c), req, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to export users")
	}
	return sendAttachment(c, xlsxContentType, export.FileName, export.Content)
}

func (h *ExportHandler) payments(c *fiber.Ctx) error {
	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user_id")
	}
	req := dto.PaymentListRequest{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		UserID: userID,
	}

	export, err := h.service.Payments(requestContext(c), req, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to export payments")
	}
	return sendAttachment(c, xlsxContentType, export.FileName, export.Content)
}

func (h *ExportHandler) examResults(c *fiber.Ctx) error {
	examID, err := parseQueryUint(c, "exam_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam_id")
	}
	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user_id")
	}
	published, err := parseQueryBool(c, "published")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid published flag")
	}
	req := dto.ExamResultListRequest{ExamID: examID, UserID: userID, Published: published}

	export, err := h.service.ExamResults(requestContext(c), req, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to export exam results")
	}
	return sendAttachment(c, xlsxContentType, export.FileName, export.Content)
}

func (h *ExportHandler) campRegistrations(c *fiber.Ctx) error {
	campID, err := parseQueryUint(c, "camp_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid camp_id")
	}

	export, err := h.service.CampRegistrations(requestContext(c), campID, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to export camp registrations")
	}
	return sendAttachment(c, xlsxContentType, export.FileName, export.Content)
}

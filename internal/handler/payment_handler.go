package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/middleware"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// PaymentHandler handles receipt submission and receipt downloads.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler constructs the handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("component", "payment_handler").Logger(),
	}
}

// Register wires member payment routes. Only ambassadors and presidents submit payments.
func (h *PaymentHandler) Register(router fiber.Router) {
	router.Post("", middleware.WithAuth(h.upload, middleware.AuthOptions{Role: middleware.AuthRoleSubmitter}))
	router.Get("/me", h.mine)
	router.Get("/:id/receipt", h.receipt)
}

func (h *PaymentHandler) upload(c *fiber.Ctx) error {
	var payload dto.PaymentUploadRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	receipt, err := c.FormFile("receipt")
	if err != nil {
		receipt = nil
	}

	payment, err := h.service.Upload(requestContext(c), payload, receipt, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit payment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "payment submitted", payment)
}

func (h *PaymentHandler) mine(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.ListMine(requestContext(c), userIDFromContext(c), page, pageSize)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list payments")
	}
	return utils.OK(c, result.Items, "payments retrieved", fiber.Map{"pagination": result.Pagination})
}

func (h *PaymentHandler) receipt(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	document, fileName, err := h.service.Receipt(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to render receipt")
	}
	return sendAttachment(c, "application/pdf", fileName, document)
}

// AdminPaymentHandler lists and verifies payments.
type AdminPaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewAdminPaymentHandler constructs the handler.
func NewAdminPaymentHandler(service service.PaymentService, logger zerolog.Logger) *AdminPaymentHandler {
	return &AdminPaymentHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_payment_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminPaymentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/verify", h.verify)
}

func parsePaymentListRequest(c *fiber.Ctx) (dto.PaymentListRequest, error) {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return dto.PaymentListRequest{}, err
	}
	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		return dto.PaymentListRequest{}, err
	}
	return dto.PaymentListRequest{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Type:     c.Query("type"),
		UserID:   userID,
	}, nil
}

func (h *AdminPaymentHandler) list(c *fiber.Ctx) error {
	req, err := parsePaymentListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.List(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list payments")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters":    fiber.Map{"status": req.Status, "type": req.Type, "user_id": req.UserID},
	}
	return utils.OK(c, result.Items, "payments retrieved", meta)
}

func (h *AdminPaymentHandler) verify(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.PaymentVerifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	payment, err := h.service.Verify(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to verify payment")
	}
	return utils.SendSuccess(c, "payment verified", payment)
}

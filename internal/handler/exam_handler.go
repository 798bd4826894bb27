package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/service"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// ExamHandler serves active exams, attempts and the caller's published results.
type ExamHandler struct {
	exams    service.ExamService
	attempts service.AttemptService
	results  service.ResultService
	logger   zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(exams service.ExamService, attempts service.AttemptService, results service.ResultService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		exams:    exams,
		attempts: attempts,
		results:  results,
		logger:   logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register wires exam routes.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/results/me", h.myResults)
	router.Get("/attempts/:id", h.getAttempt)
	router.Post("/attempts/:id/submit", h.submit)
	router.Get("/:id", h.get)
	router.Post("/:id/attempts", h.start)
}

func (h *ExamHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.exams.ListActive(requestContext(c), page, pageSize)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list exams")
	}
	return utils.OK(c, result.Items, "exams retrieved", fiber.Map{"pagination": result.Pagination})
}

func (h *ExamHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	exam, err := h.exams.GetActive(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load exam")
	}
	return utils.SendSuccess(c, "exam retrieved", exam)
}

func (h *ExamHandler) start(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	attempt, created, err := h.attempts.Start(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to start attempt")
	}
	if created {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt started", attempt)
	}
	return utils.SendSuccess(c, "attempt resumed", attempt)
}

func (h *ExamHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.SubmitAttemptRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	attempt, err := h.attempts.Submit(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit attempt")
	}
	return utils.SendSuccess(c, "attempt submitted", attempt)
}

func (h *ExamHandler) getAttempt(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	attempt, err := h.attempts.Get(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load attempt")
	}
	return utils.SendSuccess(c, "attempt retrieved", attempt)
}

func (h *ExamHandler) myResults(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.results.Mine(requestContext(c), userIDFromContext(c), page, pageSize)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load results")
	}
	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}
	return utils.OK(c, result.Items, "results retrieved", fiber.Map{"pagination": result.Pagination})
}

// AdminExamHandler manages exams and result publication.
type AdminExamHandler struct {
	exams   service.ExamService
	results service.ResultService
	logger  zerolog.Logger
}

// NewAdminExamHandler constructs the handler.
func NewAdminExamHandler(exams service.ExamService, results service.ResultService, logger zerolog.Logger) *AdminExamHandler {
	return &AdminExamHandler{
		exams:   exams,
		results: results,
		logger:  logger.With().Str("component", "admin_exam_handler").Logger(),
	}
}

// Register attaches exam authoring routes.
func (h *AdminExamHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

// RegisterResults attaches result review routes.
func (h *AdminExamHandler) RegisterResults(router fiber.Router) {
	router.Get("", h.listResults)
	router.Patch("/:id/publish", h.publish)
	router.Patch("/:id/unpublish", h.unpublish)
}

func (h *AdminExamHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.exams.AdminList(requestContext(c), page, pageSize, c.Query("search"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list exams")
	}
	return utils.OK(c, result.Items, "exams retrieved", fiber.Map{"pagination": result.Pagination})
}

func (h *AdminExamHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	exam, err := h.exams.AdminGet(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load exam")
	}
	return utils.SendSuccess(c, "exam retrieved", exam)
}

func (h *AdminExamHandler) create(c *fiber.Ctx) error {
	var payload dto.ExamRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	exam, err := h.exams.Create(requestContext(c), payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create exam")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", exam)
}

func (h *AdminExamHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.ExamRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	exam, err := h.exams.Update(requestContext(c), id, payload, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update exam")
	}
	return utils.SendSuccess(c, "exam updated", exam)
}

func (h *AdminExamHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.exams.Delete(requestContext(c), id, actorFromContext(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete exam")
	}
	return utils.SendSuccess(c, "exam deleted", fiber.Map{"id": id})
}

func parseResultListRequest(c *fiber.Ctx) (dto.ExamResultListRequest, error) {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return dto.ExamResultListRequest{}, err
	}
	examID, err := parseQueryUint(c, "exam_id")
	if err != nil {
		return dto.ExamResultListRequest{}, err
	}
	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		return dto.ExamResultListRequest{}, err
	}
	published, err := parseQueryBool(c, "published")
	if err != nil {
		return dto.ExamResultListRequest{}, err
	}
	return dto.ExamResultListRequest{Page: page, PageSize: pageSize, ExamID: examID, UserID: userID, Published: published}, nil
}

func (h *AdminExamHandler) listResults(c *fiber.Ctx) error {
	req, err := parseResultListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.results.List(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list results")
	}
	return utils.OK(c, result.Items, "results retrieved", fiber.Map{"pagination": result.Pagination})
}

func (h *AdminExamHandler) publish(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	result, err := h.results.Publish(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to publish result")
	}
	return utils.SendSuccess(c, "result published", result)
}

func (h *AdminExamHandler) unpublish(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	result, err := h.results.Unpublish(requestContext(c), id, actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to unpublish result")
	}
	return utils.SendSuccess(c, "result unpublished", result)
}

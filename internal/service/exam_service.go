package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// ExamService exposes exam authoring and catalogue reads.
type ExamService interface {
	ListActive(ctx context.Context, page, pageSize int) (dto.ExamListResponse, error)
	GetActive(ctx context.Context, id uint) (dto.ExamResponse, error)
	AdminList(ctx context.Context, page, pageSize int, search string) (dto.ExamListResponse, error)
	AdminGet(ctx context.Context, id uint) (dto.ExamResponse, error)
	Create(ctx context.Context, req dto.ExamRequest, actor Actor) (dto.ExamResponse, error)
	Update(ctx context.Context, id uint, req dto.ExamRequest, actor Actor) (dto.ExamResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type examService struct {
	repo      repository.ExamRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewExamService constructs the exam authoring service.
func NewExamService(repo repository.ExamRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) ExamService {
	return &examService{
		repo:      repo,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "exam_service").Logger(),
	}
}

func (s *examService) ListActive(ctx context.Context, page, pageSize int) (dto.ExamListResponse, error) {
	return s.list(ctx, repository.ExamFilter{ActiveOnly: true, Page: normalizePage(page), PageSize: clampPageSize(pageSize)})
}

func (s *examService) AdminList(ctx context.Context, page, pageSize int, search string) (dto.ExamListResponse, error) {
	return s.list(ctx, repository.ExamFilter{
		Search:   strings.ToLower(strings.TrimSpace(search)),
		Page:     normalizePage(page),
		PageSize: clampPageSize(pageSize),
	})
}

func (s *examService) list(ctx context.Context, filter repository.ExamFilter) (dto.ExamListResponse, error) {
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ExamListResponse{}, err
	}
	items := make([]dto.ExamResponse, 0, len(exams))
	for _, exam := range exams {
		items = append(items, dto.NewExamResponse(exam, false))
	}
	return dto.ExamListResponse{Items: items, Pagination: buildPagination(filter.Page, filter.PageSize, total)}, nil
}

func (s *examService) GetActive(ctx context.Context, id uint) (dto.ExamResponse, error) {
	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.ExamResponse{}, translateStoreError(err, "exam")
	}
	if !exam.IsActive {
		return dto.ExamResponse{}, notFound("exam not found")
	}
	return dto.NewExamResponse(exam, false), nil
}

func (s *examService) AdminGet(ctx context.Context, id uint) (dto.ExamResponse, error) {
	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.ExamResponse{}, translateStoreError(err, "exam")
	}
	return dto.NewExamResponse(exam, true), nil
}

func (s *examService) Create(ctx context.Context, req dto.ExamRequest, actor Actor) (dto.ExamResponse, error) {
	exam, err := s.buildExam(req)
	if err != nil {
		return dto.ExamResponse{}, err
	}
	for i := range exam.Questions {
		exam.Questions[i].ID = 0
	}
	if err := s.repo.Create(ctx, &exam); err != nil {
		return dto.ExamResponse{}, translateStoreError(err, "exam")
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "exam.created",
		TargetType: "exam",
		TargetID:   uintPtr(exam.ID),
		Metadata:   map[string]interface{}{"questions": len(exam.Questions)},
	})
	return dto.NewExamResponse(exam, true), nil
}

func (s *examService) Update(ctx context.Context, id uint, req dto.ExamRequest, actor Actor) (dto.ExamResponse, error) {
	exam, err := s.buildExam(req)
	if err != nil {
		return dto.ExamResponse{}, err
	}
	exam.ID = id
	if err := s.repo.Replace(ctx, &exam); err != nil {
		if errors.Is(err, repository.ErrUnknownQuestion) {
			return dto.ExamResponse{}, badRequest("question ids must belong to this exam")
		}
		return dto.ExamResponse{}, translateStoreError(err, "exam")
	}

	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.ExamResponse{}, translateStoreError(err, "exam")
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "exam.updated",
		TargetType: "exam",
		TargetID:   uintPtr(id),
		Metadata:   map[string]interface{}{"questions": len(stored.Questions)},
	})
	return dto.NewExamResponse(stored, true), nil
}

func (s *examService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateStoreError(err, "exam")
	}
	recordAudit(ctx, s.audit, s.logger, AuditEntry{Actor: actor, Action: "exam.deleted", TargetType: "exam", TargetID: uintPtr(id)})
	return nil
}

func (s *examService) buildExam(req dto.ExamRequest) (models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Exam{}, err
	}

	questions := make([]models.ExamQuestion, 0, len(req.Questions))
	for i, q := range req.Questions {
		if q.CorrectAnswer >= len(q.Options) {
			return models.Exam{}, badRequest("question %d: correct_answer must index one of its options", i+1)
		}
		options := make([]string, 0, len(q.Options))
		for _, option := range q.Options {
			options = append(options, strings.TrimSpace(option))
		}
		points := q.Points
		if points <= 0 {
			points = 1
		}
		questions = append(questions, models.ExamQuestion{
			ID:            q.ID,
			Prompt:        strings.TrimSpace(q.Prompt),
			Options:       datatypes.NewJSONType(options),
			CorrectAnswer: q.CorrectAnswer,
			Points:        points,
			Position:      i + 1,
		})
	}

	return models.Exam{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		DurationMinutes: req.DurationMinutes,
		PassScore:       req.PassScore,
		IsActive:        req.IsActive,
		Questions:       questions,
	}, nil
}

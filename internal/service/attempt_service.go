package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/observability"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// AttemptService drives the exam attempt lifecycle.
type AttemptService interface {
	// Start returns the caller's in-progress attempt for the exam, creating one when none exists.
	Start(ctx context.Context, examID uint, actor Actor) (dto.AttemptResponse, bool, error)
	Submit(ctx context.Context, attemptID uint, req dto.SubmitAttemptRequest, actor Actor) (dto.AttemptResponse, error)
	Get(ctx context.Context, attemptID uint, actor Actor) (dto.AttemptResponse, error)
}

type attemptService struct {
	exams     repository.ExamRepository
	attempts  repository.AttemptRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAttemptService constructs the attempt service.
func NewAttemptService(exams repository.ExamRepository, attempts repository.AttemptRepository, validate *validator.Validate, logger zerolog.Logger) AttemptService {
	return &attemptService{
		exams:     exams,
		attempts:  attempts,
		validator: validate,
		logger:    logger.With().Str("component", "attempt_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/membership-portal-api/internal/service/attempt"),
		now:       time.Now,
	}
}

func (s *attemptService) Start(ctx context.Context, examID uint, actor Actor) (dto.AttemptResponse, bool, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return dto.AttemptResponse{}, false, translateStoreError(err, "exam")
	}
	if !exam.IsActive {
		return dto.AttemptResponse{}, false, notFound("exam not found")
	}

	existing, err := s.attempts.FindInProgress(ctx, actor.ID, examID)
	if err == nil {
		observability.ExamAttempts().WithLabelValues("resumed").Inc()
		return dto.NewAttemptResponse(existing, exam, false), false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AttemptResponse{}, false, err
	}

	attempt := models.ExamAttempt{
		UserID:    actor.ID,
		ExamID:    examID,
		Answers:   datatypes.NewJSONType(models.AnswerSheet{}),
		Status:    models.AttemptStatusInProgress,
		StartedAt: s.now(),
	}
	if err := s.attempts.Create(ctx, &attempt); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AttemptResponse{}, false, err
		}
		// A concurrent start won the insert.
		existing, findErr := s.attempts.FindInProgress(ctx, actor.ID, examID)
		if findErr != nil {
			return dto.AttemptResponse{}, false, translateStoreError(findErr, "attempt")
		}
		observability.ExamAttempts().WithLabelValues("resumed").Inc()
		return dto.NewAttemptResponse(existing, exam, false), false, nil
	}

	observability.ExamAttempts().WithLabelValues("started").Inc()
	s.logger.Info().Uint("attempt_id", attempt.ID).Uint("exam_id", examID).Uint("user_id", actor.ID).Msg("exam attempt started")
	return dto.NewAttemptResponse(attempt, exam, false), true, nil
}

func (s *attemptService) Submit(ctx context.Context, attemptID uint, req dto.SubmitAttemptRequest, actor Actor) (dto.AttemptResponse, error) {
	ctx, span := s.tracer.Start(ctx, "exam.submit", trace.WithAttributes(
		attribute.Int("attempt.id", int(attemptID)),
		attribute.Int("attempt.user_id", int(actor.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.AttemptResponse{}, err
	}

	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		span.RecordError(err)
		return dto.AttemptResponse{}, translateStoreError(err, "attempt")
	}
	if attempt.UserID != actor.ID {
		span.SetStatus(codes.Error, "forbidden")
		return dto.AttemptResponse{}, forbidden("attempt belongs to another user")
	}
	if attempt.Status != models.AttemptStatusInProgress {
		observability.ExamAttempts().WithLabelValues("conflict").Inc()
		span.SetStatus(codes.Error, "not in progress")
		return dto.AttemptResponse{}, conflict("attempt is already %s", attempt.Status)
	}

	exam, err := s.exams.GetByID(ctx, attempt.ExamID)
	if err != nil {
		span.RecordError(err)
		return dto.AttemptResponse{}, translateStoreError(err, "exam")
	}

	start := time.Now()
	submittedAt := s.now()
	answers := models.AnswerSheet{}
	for key, value := range req.Answers {
		answers[key] = value
	}
	score, passed := gradeAttempt(exam, answers)

	attempt.Answers = datatypes.NewJSONType(answers)
	attempt.Score = &score
	attempt.Passed = &passed
	attempt.SubmittedAt = &submittedAt
	attempt.Late = exam.Expired(attempt.StartedAt, submittedAt)
	attempt.Status = models.AttemptStatusGraded
	if attempt.Late {
		attempt.Status = models.AttemptStatusAutoSubmitted
	}

	result := models.ExamResult{
		UserID: attempt.UserID,
		ExamID: attempt.ExamID,
		Score:  score,
		Passed: passed,
		Late:   attempt.Late,
	}
	span.SetAttributes(
		attribute.Float64("attempt.score", score),
		attribute.Bool("attempt.late", attempt.Late),
	)

	if err := s.attempts.Finalize(ctx, &attempt, &result); err != nil {
		if errors.Is(err, repository.ErrStaleRecord) {
			observability.ExamAttempts().WithLabelValues("conflict").Inc()
			span.SetStatus(codes.Error, "lost submit race")
			return dto.AttemptResponse{}, conflict("attempt was already submitted")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "finalize failed")
		return dto.AttemptResponse{}, err
	}

	observability.ExamGradeLatency().Observe(time.Since(start).Seconds())
	observability.ExamAttempts().WithLabelValues(attempt.Status).Inc()
	span.SetStatus(codes.Ok, attempt.Status)
	s.logger.Info().
		Uint("attempt_id", attempt.ID).
		Str("status", attempt.Status).
		Float64("score", score).
		Msg("exam attempt submitted")

	return dto.NewAttemptResponse(attempt, exam, actor.IsAdmin()), nil
}

func (s *attemptService) Get(ctx context.Context, attemptID uint, actor Actor) (dto.AttemptResponse, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return dto.AttemptResponse{}, translateStoreError(err, "attempt")
	}
	if attempt.UserID != actor.ID && !actor.IsAdmin() {
		return dto.AttemptResponse{}, forbidden("attempt belongs to another user")
	}

	exam, err := s.exams.GetByID(ctx, attempt.ExamID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AttemptResponse{}, err
	}
	return dto.NewAttemptResponse(attempt, exam, actor.IsAdmin()), nil
}

// gradeAttempt awards each question's points when the stored answer matches. Unanswered questions earn nothing.
// The score is a percentage rounded to two decimals; an exam worth zero points scores zero.
func gradeAttempt(exam models.Exam, answers models.AnswerSheet) (float64, bool) {
	var earned, total float64
	for _, question := range exam.Questions {
		total += question.Points
		selected, ok := answers[strconv.FormatUint(uint64(question.ID), 10)]
		if ok && selected == question.CorrectAnswer {
			earned += question.Points
		}
	}

	score := 0.0
	if total > 0 {
		score = math.Round(10000*earned/total) / 100
	}
	return score, score >= exam.PassScore
}

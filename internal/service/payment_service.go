package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/observability"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// PaymentService handles receipt submission and manual verification.
type PaymentService interface {
	Upload(ctx context.Context, req dto.PaymentUploadRequest, receipt *multipart.FileHeader, actor Actor) (dto.PaymentResponse, error)
	ListMine(ctx context.Context, userID uint, page, pageSize int) (dto.PaymentListResponse, error)
	List(ctx context.Context, req dto.PaymentListRequest) (dto.PaymentListResponse, error)
	// Verify approves or rejects a pending payment. A payment is verified at most once.
	Verify(ctx context.Context, id uint, req dto.PaymentVerifyRequest, actor Actor) (dto.PaymentResponse, error)
	// Receipt renders a PDF for the owner or an administrator and returns it with a file name.
	Receipt(ctx context.Context, id uint, actor Actor) ([]byte, string, error)
}

type paymentService struct {
	repo      repository.PaymentRepository
	storage   FileStorage
	audit     AuditRecorder
	cache     *redis.Client
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewPaymentService constructs the payment service. cache may be nil.
func NewPaymentService(repo repository.PaymentRepository, storage FileStorage, audit AuditRecorder, cache *redis.Client, validate *validator.Validate, logger zerolog.Logger) PaymentService {
	return &paymentService{
		repo:      repo,
		storage:   storage,
		audit:     audit,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "payment_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/membership-portal-api/internal/service/payment"),
		now:       time.Now,
	}
}

func (s *paymentService) Upload(ctx context.Context, req dto.PaymentUploadRequest, receipt *multipart.FileHeader, actor Actor) (dto.PaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "payment.upload", trace.WithAttributes(attribute.Int("payment.user_id", int(actor.ID))))
	defer span.End()

	req.ReceiptURL = strings.TrimSpace(req.ReceiptURL)
	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.PaymentResponse{}, err
	}

	receiptURL := req.ReceiptURL
	if receipt != nil {
		start := time.Now()
		upload, err := readUpload(receipt, receiptPolicy, span)
		if err != nil {
			observability.UploadLatency().Observe(time.Since(start).Seconds())
			span.RecordError(err)
			span.SetStatus(codes.Error, "receipt rejected")
			return dto.PaymentResponse{}, err
		}
		receiptURL, err = storeUpload(ctx, s.storage, "receipts", upload, receiptPolicy)
		observability.UploadLatency().Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "storage failed")
			return dto.PaymentResponse{}, err
		}
	}
	if receiptURL == "" {
		span.SetStatus(codes.Error, "receipt missing")
		return dto.PaymentResponse{}, badRequest("a receipt file or receipt_url is required")
	}

	payment := models.Payment{
		UserID:     actor.ID,
		Type:       req.Type,
		Amount:     req.Amount,
		ReceiptURL: receiptURL,
		Status:     models.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, &payment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.PaymentResponse{}, err
	}
	span.SetStatus(codes.Ok, "pending")

	cacheInvalidate(ctx, s.cache, s.logger, dashboardCacheKey(actor.ID))
	s.logger.Info().Uint("payment_id", payment.ID).Uint("user_id", actor.ID).Str("type", payment.Type).Msg("payment submitted")
	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) ListMine(ctx context.Context, userID uint, page, pageSize int) (dto.PaymentListResponse, error) {
	return s.list(ctx, repository.PaymentFilter{
		UserID:   uintPtr(userID),
		Page:     normalizePage(page),
		PageSize: clampPageSize(pageSize),
	})
}

func (s *paymentService) List(ctx context.Context, req dto.PaymentListRequest) (dto.PaymentListResponse, error) {
	filter := repository.PaymentFilter{
		Status:   strings.ToLower(strings.TrimSpace(req.Status)),
		Type:     strings.ToLower(strings.TrimSpace(req.Type)),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}
	if req.UserID > 0 {
		filter.UserID = uintPtr(req.UserID)
	}
	return s.list(ctx, filter)
}

func (s *paymentService) list(ctx context.Context, filter repository.PaymentFilter) (dto.PaymentListResponse, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.PaymentListResponse{}, err
	}
	items := make([]dto.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		items = append(items, dto.NewPaymentResponse(payment))
	}
	return dto.PaymentListResponse{Items: items, Pagination: buildPagination(filter.Page, filter.PageSize, total)}, nil
}

func (s *paymentService) Verify(ctx context.Context, id uint, req dto.PaymentVerifyRequest, actor Actor) (dto.PaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "payment.verify", trace.WithAttributes(
		attribute.Int("payment.id", int(id)),
		attribute.String("payment.decision", req.Status),
	))
	defer span.End()

	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.PaymentResponse{}, err
	}
	if req.Status == models.PaymentStatusRejected && req.Reason == "" {
		span.SetStatus(codes.Error, "validation failed")
		return dto.PaymentResponse{}, badRequest("a reason is required when rejecting a payment")
	}
	if req.Status == models.PaymentStatusApproved {
		req.Reason = ""
	}

	payment, err := s.repo.Verify(ctx, id, repository.PaymentVerification{
		Status:     req.Status,
		Reason:     req.Reason,
		VerifiedBy: actor.ID,
		VerifiedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleRecord) {
			observability.PaymentVerifications().WithLabelValues("conflict").Inc()
			span.SetStatus(codes.Error, "already verified")
			return dto.PaymentResponse{}, conflict("payment has already been verified")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "verify failed")
		return dto.PaymentResponse{}, translateStoreError(err, "payment")
	}

	observability.PaymentVerifications().WithLabelValues(payment.Status).Inc()
	span.SetStatus(codes.Ok, payment.Status)
	cacheInvalidate(ctx, s.cache, s.logger, dashboardCacheKey(payment.UserID))

	metadata := map[string]interface{}{
		"status":  payment.Status,
		"user_id": payment.UserID,
		"amount":  payment.Amount,
	}
	if payment.RejectionReason != "" {
		metadata["reason"] = payment.RejectionReason
	}
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "payment.verified",
		TargetType: "payment",
		TargetID:   uintPtr(payment.ID),
		Metadata:   metadata,
	})
	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) Receipt(ctx context.Context, id uint, actor Actor) ([]byte, string, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", translateStoreError(err, "payment")
	}
	if payment.UserID != actor.ID && !actor.IsAdmin() {
		return nil, "", forbidden("payment belongs to another user")
	}

	document, err := renderPaymentReceipt(payment, s.now())
	if err != nil {
		s.logger.Error().Err(err).Uint("payment_id", id).Msg("failed to render receipt")
		return nil, "", err
	}
	return document, fmt.Sprintf("receipt-%06d.pdf", payment.ID), nil
}

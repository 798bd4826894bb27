package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/observability"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// Reasons reported for rejected spreadsheet rows.
const (
	BulkReasonInvalidEmail      = "invalid email"
	BulkReasonUnknownEmail      = "user not found"
	BulkReasonAlreadyRegistered = "already registered"
)

// CampService manages camps and their registrations.
type CampService interface {
	ListOpen(ctx context.Context, page, pageSize int) ([]dto.CampResponse, dto.PaginationMeta, error)
	Create(ctx context.Context, req dto.CampRequest, actor Actor) (dto.CampResponse, error)
	Update(ctx context.Context, id uint, req dto.CampRequest, actor Actor) (dto.CampResponse, error)
	// Register signs up the caller, or the user identified by email when the caller is an admin or president.
	Register(ctx context.Context, campID uint, req dto.CampRegistrationRequest, actor Actor) (dto.CampRegistrationResponse, error)
	// BulkRegister imports an xlsx sheet whose first column holds member emails. The first row is a header.
	BulkRegister(ctx context.Context, campID uint, file *multipart.FileHeader, actor Actor) (dto.BulkRegistrationResponse, error)
	ListRegistrations(ctx context.Context, campID uint, page, pageSize int) ([]dto.CampRegistrationResponse, dto.PaginationMeta, error)
}

type campService struct {
	camps     repository.CampRepository
	users     repository.UserRepository
	audit     AuditRecorder
	cache     *redis.Client
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewCampService constructs the camp service. cache may be nil.
func NewCampService(camps repository.CampRepository, users repository.UserRepository, audit AuditRecorder, cache *redis.Client, validate *validator.Validate, logger zerolog.Logger) CampService {
	return &campService{
		camps:     camps,
		users:     users,
		audit:     audit,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "camp_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/membership-portal-api/internal/service/camp"),
	}
}

func (s *campService) ListOpen(ctx context.Context, page, pageSize int) ([]dto.CampResponse, dto.PaginationMeta, error) {
	filter := repository.CampFilter{OpenOnly: true, Page: normalizePage(page), PageSize: clampPageSize(pageSize)}
	camps, total, err := s.camps.List(ctx, filter)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}
	items := make([]dto.CampResponse, 0, len(camps))
	for _, camp := range camps {
		items = append(items, dto.NewCampResponse(camp))
	}
	return items, buildPagination(filter.Page, filter.PageSize, total), nil
}

func (s *campService) Create(ctx context.Context, req dto.CampRequest, actor Actor) (dto.CampResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CampResponse{}, err
	}
	camp := models.Camp{}
	if err := applyCamp(&camp, req); err != nil {
		return dto.CampResponse{}, err
	}
	if err := s.camps.Create(ctx, &camp); err != nil {
		return dto.CampResponse{}, err
	}

	s.recordCamp(ctx, actor, "camp.created", camp)
	return dto.NewCampResponse(camp), nil
}

func (s *campService) Update(ctx context.Context, id uint, req dto.CampRequest, actor Actor) (dto.CampResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CampResponse{}, err
	}
	camp, err := s.camps.GetByID(ctx, id)
	if err != nil {
		return dto.CampResponse{}, translateStoreError(err, "camp")
	}
	if err := applyCamp(&camp, req); err != nil {
		return dto.CampResponse{}, err
	}
	if err := s.camps.Update(ctx, &camp); err != nil {
		return dto.CampResponse{}, err
	}

	s.recordCamp(ctx, actor, "camp.updated", camp)
	return dto.NewCampResponse(camp), nil
}

func applyCamp(camp *models.Camp, req dto.CampRequest) error {
	startsAt, err := parseTimestamp("starts_at", req.StartsAt)
	if err != nil {
		return err
	}
	endsAt, err := parseTimestamp("ends_at", req.EndsAt)
	if err != nil {
		return err
	}
	if endsAt.Before(startsAt) {
		return badRequest("ends_at must not be before starts_at")
	}
	camp.Name = strings.TrimSpace(req.Name)
	camp.Location = strings.TrimSpace(req.Location)
	camp.StartsAt = startsAt
	camp.EndsAt = endsAt
	camp.IsOpen = req.IsOpen
	return nil
}

func (s *campService) Register(ctx context.Context, campID uint, req dto.CampRegistrationRequest, actor Actor) (dto.CampRegistrationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CampRegistrationResponse{}, err
	}

	camp, err := s.camps.GetByID(ctx, campID)
	if err != nil {
		return dto.CampRegistrationResponse{}, translateStoreError(err, "camp")
	}
	if !camp.IsOpen {
		return dto.CampRegistrationResponse{}, notFound("camp not found")
	}

	target, err := s.resolveRegistrant(ctx, normalizeEmail(req.Email), actor)
	if err != nil {
		return dto.CampRegistrationResponse{}, err
	}

	exists, err := s.camps.RegistrationExists(ctx, camp.ID, target.ID)
	if err != nil {
		return dto.CampRegistrationResponse{}, err
	}
	if exists {
		return dto.CampRegistrationResponse{}, conflict("user is already registered for this camp")
	}

	registration := models.CampRegistration{
		CampID:       camp.ID,
		UserID:       target.ID,
		RegisteredBy: actor.ID,
		Source:       models.RegistrationSourceIndividual,
	}
	if err := s.camps.CreateRegistration(ctx, &registration); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CampRegistrationResponse{}, conflict("user is already registered for this camp")
		}
		return dto.CampRegistrationResponse{}, err
	}
	registration.User = target

	cacheInvalidate(ctx, s.cache, s.logger, dashboardCacheKey(target.ID))
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "camp.registration_created",
		TargetType: "camp",
		TargetID:   uintPtr(camp.ID),
		Metadata:   map[string]interface{}{"user_id": target.ID, "source": registration.Source},
	})
	return dto.NewCampRegistrationResponse(registration), nil
}

// resolveRegistrant returns the caller, or the user behind email when the caller may register others.
// Presidents can only register members of their own association.
func (s *campService) resolveRegistrant(ctx context.Context, email string, actor Actor) (models.User, error) {
	caller, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return models.User{}, translateStoreError(err, "user")
	}
	if email == "" || email == caller.Email {
		return caller, nil
	}

	if !actor.IsAdmin() && actor.Role != models.RolePresident {
		return models.User{}, forbidden("only administrators and presidents can register other members")
	}

	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, translateStoreError(err, "user")
	}
	if actor.Role == models.RolePresident {
		if caller.AssociationID == nil || target.AssociationID == nil || *caller.AssociationID != *target.AssociationID {
			return models.User{}, forbidden("presidents can only register members of their association")
		}
	}
	return target, nil
}

func (s *campService) BulkRegister(ctx context.Context, campID uint, file *multipart.FileHeader, actor Actor) (dto.BulkRegistrationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "camp.bulk_register", trace.WithAttributes(attribute.Int("camp.id", int(campID))))
	defer span.End()

	camp, err := s.camps.GetByID(ctx, campID)
	if err != nil {
		span.RecordError(err)
		return dto.BulkRegistrationResponse{}, translateStoreError(err, "camp")
	}

	upload, err := readUpload(file, spreadsheetPolicy, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "spreadsheet rejected")
		return dto.BulkRegistrationResponse{}, err
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(upload.payload))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unreadable workbook")
		return dto.BulkRegistrationResponse{}, badRequest("spreadsheet could not be read")
	}
	defer func() {
		if err := workbook.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close workbook")
		}
	}()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return dto.BulkRegistrationResponse{}, badRequest("spreadsheet has no sheets")
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		span.RecordError(err)
		return dto.BulkRegistrationResponse{}, badRequest("spreadsheet could not be read")
	}

	response := dto.BulkRegistrationResponse{Errors: []dto.BulkRowError{}}
	for index, row := range rows {
		if index == 0 {
			continue
		}
		email := ""
		if len(row) > 0 {
			email = normalizeEmail(row[0])
		}
		if email == "" {
			continue
		}

		rowNumber := index + 1
		reason, err := s.importRow(ctx, camp.ID, email, actor)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "import aborted")
			s.logger.Error().Err(err).Int("row", rowNumber).Uint("camp_id", camp.ID).Msg("bulk registration aborted")
			return dto.BulkRegistrationResponse{}, err
		}
		if reason != "" {
			observability.BulkImportRows().WithLabelValues("rejected").Inc()
			response.Errors = append(response.Errors, dto.BulkRowError{Row: rowNumber, Email: email, Reason: reason})
			continue
		}
		observability.BulkImportRows().WithLabelValues("inserted").Inc()
		response.Inserted++
	}

	span.SetAttributes(
		attribute.Int("camp.bulk.inserted", response.Inserted),
		attribute.Int("camp.bulk.rejected", len(response.Errors)),
	)
	span.SetStatus(codes.Ok, "imported")

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "camp.bulk_imported",
		TargetType: "camp",
		TargetID:   uintPtr(camp.ID),
		Metadata:   map[string]interface{}{"inserted": response.Inserted, "rejected": len(response.Errors), "file_name": upload.name},
	})
	s.logger.Info().Uint("camp_id", camp.ID).Int("inserted", response.Inserted).Int("rejected", len(response.Errors)).Msg("bulk registration processed")
	return response, nil
}

// importRow inserts one registration. A non-empty reason means the row was rejected; err aborts the import.
func (s *campService) importRow(ctx context.Context, campID uint, email string, actor Actor) (string, error) {
	if err := s.validator.Var(email, "email"); err != nil {
		return BulkReasonInvalidEmail, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BulkReasonUnknownEmail, nil
		}
		return "", err
	}

	exists, err := s.camps.RegistrationExists(ctx, campID, user.ID)
	if err != nil {
		return "", err
	}
	if exists {
		return BulkReasonAlreadyRegistered, nil
	}

	registration := models.CampRegistration{
		CampID:       campID,
		UserID:       user.ID,
		RegisteredBy: actor.ID,
		Source:       models.RegistrationSourceBulk,
	}
	if err := s.camps.CreateRegistration(ctx, &registration); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return BulkReasonAlreadyRegistered, nil
		}
		return "", err
	}
	cacheInvalidate(ctx, s.cache, s.logger, dashboardCacheKey(user.ID))
	return "", nil
}

func (s *campService) ListRegistrations(ctx context.Context, campID uint, page, pageSize int) ([]dto.CampRegistrationResponse, dto.PaginationMeta, error) {
	if _, err := s.camps.GetByID(ctx, campID); err != nil {
		return nil, dto.PaginationMeta{}, translateStoreError(err, "camp")
	}
	page = normalizePage(page)
	pageSize = clampPageSize(pageSize)

	registrations, total, err := s.camps.ListRegistrations(ctx, uintPtr(campID), page, pageSize)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}
	items := make([]dto.CampRegistrationResponse, 0, len(registrations))
	for _, registration := range registrations {
		items = append(items, dto.NewCampRegistrationResponse(registration))
	}
	return items, buildPagination(page, pageSize, total), nil
}

func (s *campService) recordCamp(ctx context.Context, actor Actor, action string, camp models.Camp) {
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     action,
		TargetType: "camp",
		TargetID:   uintPtr(camp.ID),
		Metadata:   map[string]interface{}{"name": camp.Name, "is_open": camp.IsOpen},
	})
}

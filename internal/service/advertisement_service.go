package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// AdvertisementService manages sponsored banners.
type AdvertisementService interface {
	// Live returns active ads whose window contains now, optionally for a single placement.
	Live(ctx context.Context, placement string) ([]dto.AdvertisementResponse, error)
	List(ctx context.Context, placement string, page, pageSize int) (dto.AdvertisementListResponse, error)
	Create(ctx context.Context, req dto.AdvertisementRequest, actor Actor) (dto.AdvertisementResponse, error)
	Update(ctx context.Context, id uint, req dto.AdvertisementRequest, actor Actor) (dto.AdvertisementResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type advertisementService struct {
	repo      repository.AdvertisementRepository
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer contentSanitizer
	now       func() time.Time
}

// NewAdvertisementService constructs the advertisement service.
func NewAdvertisementService(repo repository.AdvertisementRepository, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) AdvertisementService {
	return &advertisementService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "advertisement_service").Logger(),
		sanitizer: newContentSanitizer(),
		now:       time.Now,
	}
}

func (s *advertisementService) Live(ctx context.Context, placement string) ([]dto.AdvertisementResponse, error) {
	ads, err := s.repo.ListLive(ctx, normalizePlacement(placement), s.now().UTC())
	if err != nil {
		return nil, err
	}
	responses := make([]dto.AdvertisementResponse, 0, len(ads))
	for _, ad := range ads {
		responses = append(responses, dto.NewAdvertisementResponse(ad))
	}
	return responses, nil
}

func (s *advertisementService) List(ctx context.Context, placement string, page, pageSize int) (dto.AdvertisementListResponse, error) {
	filter := repository.AdvertisementFilter{
		Placement: normalizePlacement(placement),
		Page:      normalizePage(page),
		PageSize:  clampPageSize(pageSize),
	}
	ads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdvertisementListResponse{}, err
	}
	items := make([]dto.AdvertisementResponse, 0, len(ads))
	for _, ad := range ads {
		items = append(items, dto.NewAdvertisementResponse(ad))
	}
	return dto.AdvertisementListResponse{Items: items, Pagination: buildPagination(filter.Page, filter.PageSize, total)}, nil
}

func (s *advertisementService) Create(ctx context.Context, req dto.AdvertisementRequest, actor Actor) (dto.AdvertisementResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdvertisementResponse{}, err
	}

	ad := models.Advertisement{}
	if err := s.apply(&ad, req); err != nil {
		return dto.AdvertisementResponse{}, err
	}
	if err := s.repo.Create(ctx, &ad); err != nil {
		return dto.AdvertisementResponse{}, translateStoreError(err, "advertisement")
	}

	s.recordActivity(ctx, actor, "advertisement.created", ad.ID)
	return dto.NewAdvertisementResponse(ad), nil
}

func (s *advertisementService) Update(ctx context.Context, id uint, req dto.AdvertisementRequest, actor Actor) (dto.AdvertisementResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AdvertisementResponse{}, err
	}

	ad, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AdvertisementResponse{}, translateStoreError(err, "advertisement")
	}
	if err := s.apply(&ad, req); err != nil {
		return dto.AdvertisementResponse{}, err
	}
	if err := s.repo.Update(ctx, &ad); err != nil {
		return dto.AdvertisementResponse{}, translateStoreError(err, "advertisement")
	}

	s.recordActivity(ctx, actor, "advertisement.updated", ad.ID)
	return dto.NewAdvertisementResponse(ad), nil
}

func (s *advertisementService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateStoreError(err, "advertisement")
	}
	s.recordActivity(ctx, actor, "advertisement.deleted", id)
	return nil
}

func (s *advertisementService) apply(ad *models.Advertisement, req dto.AdvertisementRequest) error {
	startsAt, endsAt, err := parseWindow(req.StartsAt, req.EndsAt)
	if err != nil {
		return err
	}
	ad.Title = s.sanitizer.Text(req.Title)
	ad.ImageURL = strings.TrimSpace(req.ImageURL)
	ad.LinkURL = strings.TrimSpace(req.LinkURL)
	ad.Placement = normalizePlacement(req.Placement)
	ad.StartsAt = startsAt
	ad.EndsAt = endsAt
	ad.IsActive = req.IsActive
	return nil
}

func (s *advertisementService) recordActivity(ctx context.Context, actor Actor, action string, id uint) {
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     action,
		TargetType: "advertisement",
		TargetID:   uintPtr(id),
	})
}

func normalizePlacement(placement string) string {
	return strings.ToLower(strings.TrimSpace(placement))
}

package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// HomepageService manages the editable landing page sections.
type HomepageService interface {
	// Sections lists sections in position order. Public callers only see visible ones.
	Sections(ctx context.Context, visibleOnly bool) ([]dto.HomepageSectionResponse, error)
	Create(ctx context.Context, req dto.HomepageSectionRequest, actor Actor) (dto.HomepageSectionResponse, error)
	Update(ctx context.Context, id uint, req dto.HomepageSectionRequest, actor Actor) (dto.HomepageSectionResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type homepageService struct {
	repo      repository.HomepageRepository
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer contentSanitizer
}

// NewHomepageService constructs the homepage service.
func NewHomepageService(repo repository.HomepageRepository, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) HomepageService {
	return &homepageService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "homepage_service").Logger(),
		sanitizer: newContentSanitizer(),
	}
}

func (s *homepageService) Sections(ctx context.Context, visibleOnly bool) ([]dto.HomepageSectionResponse, error) {
	sections, err := s.repo.List(ctx, visibleOnly)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.HomepageSectionResponse, 0, len(sections))
	for _, section := range sections {
		responses = append(responses, dto.NewHomepageSectionResponse(section))
	}
	return responses, nil
}

func (s *homepageService) Create(ctx context.Context, req dto.HomepageSectionRequest, actor Actor) (dto.HomepageSectionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.HomepageSectionResponse{}, err
	}

	section := models.HomepageSection{}
	s.apply(&section, req)
	if err := s.repo.Create(ctx, &section); err != nil {
		return dto.HomepageSectionResponse{}, translateStoreError(err, "homepage section")
	}

	s.recordActivity(ctx, actor, "homepage.created", section)
	return dto.NewHomepageSectionResponse(section), nil
}

func (s *homepageService) Update(ctx context.Context, id uint, req dto.HomepageSectionRequest, actor Actor) (dto.HomepageSectionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.HomepageSectionResponse{}, err
	}

	section, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.HomepageSectionResponse{}, translateStoreError(err, "homepage section")
	}
	s.apply(&section, req)
	if err := s.repo.Update(ctx, &section); err != nil {
		return dto.HomepageSectionResponse{}, translateStoreError(err, "homepage section")
	}

	s.recordActivity(ctx, actor, "homepage.updated", section)
	return dto.NewHomepageSectionResponse(section), nil
}

func (s *homepageService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateStoreError(err, "homepage section")
	}
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "homepage.deleted",
		TargetType: "homepage_section",
		TargetID:   uintPtr(id),
	})
	return nil
}

func (s *homepageService) apply(section *models.HomepageSection, req dto.HomepageSectionRequest) {
	section.Key = strings.ToLower(strings.TrimSpace(req.Key))
	section.Title = s.sanitizer.Text(req.Title)
	section.Body = s.sanitizer.HTML(req.Body)
	section.Position = req.Position
	section.IsVisible = req.IsVisible
}

func (s *homepageService) recordActivity(ctx context.Context, actor Actor, action string, section models.HomepageSection) {
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     action,
		TargetType: "homepage_section",
		TargetID:   uintPtr(section.ID),
		Metadata:   map[string]interface{}{"key": section.Key, "visible": section.IsVisible},
	})
}

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

// GalleryService manages the public gallery.
type GalleryService interface {
	List(ctx context.Context, req dto.ContentListRequest) (dto.GalleryListResponse, error)
	Create(ctx context.Context, req dto.GalleryRequest, actor Actor) (dto.GalleryItemResponse, error)
	Update(ctx context.Context, id uint, req dto.GalleryRequest, actor Actor) (dto.GalleryItemResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type galleryService struct {
	repo      repository.GalleryRepository
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer contentSanitizer
}

// NewGalleryService constructs the gallery service.
func NewGalleryService(repo repository.GalleryRepository, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) GalleryService {
	return &galleryService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "gallery_service").Logger(),
		sanitizer: newContentSanitizer(),
	}
}

func (s *galleryService) List(ctx context.Context, req dto.ContentListRequest) (dto.GalleryListResponse, error) {
	filter := repository.GalleryFilter{
		Tags:     sanitizeTags(req.Tags),
		Search:   strings.TrimSpace(req.Search),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.GalleryListResponse{}, err
	}

	responses := make([]dto.GalleryItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewGalleryItemResponse(item))
	}
	return dto.GalleryListResponse{Items: responses, Pagination: buildPagination(filter.Page, filter.PageSize, total)}, nil
}

func (s *galleryService) Create(ctx context.Context, req dto.GalleryRequest, actor Actor) (dto.GalleryItemResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GalleryItemResponse{}, err
	}

	item := models.GalleryItem{}
	s.apply(&item, req)
	if item.Title == "" {
		return dto.GalleryItemResponse{}, badRequest("title must contain text")
	}

	err := createWithSlug(item.Title, func(slug string) { item.Slug = slug }, func() error {
		return s.repo.Create(ctx, &item)
	})
	if err != nil {
		return dto.GalleryItemResponse{}, translateStoreError(err, "gallery item")
	}

	s.recordActivity(ctx, actor, "gallery.created", item.ID)
	return dto.NewGalleryItemResponse(item), nil
}

func (s *galleryService) Update(ctx context.Context, id uint, req dto.GalleryRequest, actor Actor) (dto.GalleryItemResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GalleryItemResponse{}, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.GalleryItemResponse{}, translateStoreError(err, "gallery item")
	}

	s.apply(&item, req)
	if item.Title == "" {
		return dto.GalleryItemResponse{}, badRequest("title must contain text")
	}
	if err := s.repo.Update(ctx, &item); err != nil {
		return dto.GalleryItemResponse{}, translateStoreError(err, "gallery item")
	}

	s.recordActivity(ctx, actor, "gallery.updated", item.ID)
	return dto.NewGalleryItemResponse(item), nil
}

func (s *galleryService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateStoreError(err, "gallery item")
	}
	s.recordActivity(ctx, actor, "gallery.deleted", id)
	return nil
}

func (s *galleryService) apply(item *models.GalleryItem, req dto.GalleryRequest) {
	item.Title = s.sanitizer.Text(req.Title)
	item.Caption = s.sanitizer.Text(req.Caption)
	item.ImagePath = strings.TrimSpace(req.ImageURL)
	item.Tags = sanitizeTags(req.Tags)
}

func (s *galleryService) recordActivity(ctx context.Context, actor Actor, action string, id uint) {
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     action,
		TargetType: "gallery",
		TargetID:   uintPtr(id),
	})
}

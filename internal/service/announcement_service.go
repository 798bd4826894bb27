package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

const announcementCachePrefix = "announcements:active:v1:"

// AnnouncementService exposes public and administrative announcement operations.
type AnnouncementService interface {
	ListActive(ctx context.Context, page, pageSize int) (dto.AnnouncementListResponse, error)
	AdminList(ctx context.Context, req dto.ContentListRequest) (dto.AnnouncementListResponse, error)
	Create(ctx context.Context, req dto.AnnouncementRequest, actor Actor) (dto.AnnouncementResponse, error)
	Update(ctx context.Context, id uint, req dto.AnnouncementRequest, actor Actor) (dto.AnnouncementResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type announcementService struct {
	repo      repository.AnnouncementRepository
	audit     AuditRecorder
	validator *validator.Validate
	cache     *redis.Client
	ttl       time.Duration
	logger    zerolog.Logger
	sanitizer contentSanitizer
	now       func() time.Time
}

// NewAnnouncementService constructs the announcement service.
func NewAnnouncementService(repo repository.AnnouncementRepository, audit AuditRecorder, validate *validator.Validate, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnnouncementService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &announcementService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.With().Str("component", "announcement_service").Logger(),
		sanitizer: newContentSanitizer(),
		now:       time.Now,
	}
}

func (s *announcementService) ListActive(ctx context.Context, page, pageSize int) (dto.AnnouncementListResponse, error) {
	page = normalizePage(page)
	pageSize = clampPageSize(pageSize)

	cacheKey := fmt.Sprintf("%s%d:%d", announcementCachePrefix, page, pageSize)
	var cached dto.AnnouncementListResponse
	if cacheGet(ctx, s.cache, "announcements", cacheKey, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	items, total, err := s.repo.ListActive(ctx, repository.AnnouncementFilter{Page: page, PageSize: pageSize}, s.now().UTC())
	if err != nil {
		return dto.AnnouncementListResponse{}, err
	}

	response := s.buildList(items, page, pageSize, total)
	cacheSet(ctx, s.cache, s.logger, cacheKey, response, s.ttl)
	return response, nil
}

func (s *announcementService) AdminList(ctx context.Context, req dto.ContentListRequest) (dto.AnnouncementListResponse, error) {
	filter := repository.AnnouncementFilter{
		Search:   strings.ToLower(strings.TrimSpace(req.Search)),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}
	items, total, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return dto.AnnouncementListResponse{}, err
	}
	return s.buildList(items, filter.Page, filter.PageSize, total), nil
}

func (s *announcementService) buildList(items []models.Announcement, page, pageSize int, total int64) dto.AnnouncementListResponse {
	responses := make([]dto.AnnouncementResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewAnnouncementResponse(item))
	}
	return dto.AnnouncementListResponse{Items: responses, Pagination: buildPagination(page, pageSize, total)}
}

func (s *announcementService) Create(ctx context.Context, req dto.AnnouncementRequest, actor Actor) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	item := models.Announcement{}
	if err := s.apply(&item, req); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	err := createWithSlug(item.Title, func(slug string) { item.Slug = slug }, func() error {
		return s.repo.Create(ctx, &item)
	})
	if err != nil {
		return dto.AnnouncementResponse{}, translateStoreError(err, "announcement")
	}

	s.afterMutation(ctx, actor, "announcement.created", item.ID)
	return dto.NewAnnouncementResponse(item), nil
}

func (s *announcementService) Update(ctx context.Context, id uint, req dto.AnnouncementRequest, actor Actor) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AnnouncementResponse{}, translateStoreError(err, "announcement")
	}
	if err := s.apply(&item, req); err != nil {
		return dto.AnnouncementResponse{}, err
	}
	if err := s.repo.Update(ctx, &item); err != nil {
		return dto.AnnouncementResponse{}, translateStoreError(err, "announcement")
	}

	s.afterMutation(ctx, actor, "announcement.updated", item.ID)
	return dto.NewAnnouncementResponse(item), nil
}

func (s *announcementService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateStoreError(err, "announcement")
	}
	s.afterMutation(ctx, actor, "announcement.deleted", id)
	return nil
}

func (s *announcementService) apply(item *models.Announcement, req dto.AnnouncementRequest) error {
	startsAt, endsAt, err := parseWindow(req.StartsAt, req.EndsAt)
	if err != nil {
		return err
	}
	item.Title = s.sanitizer.Text(req.Title)
	item.Body = s.sanitizer.HTML(req.Body)
	item.StartsAt = startsAt
	item.EndsAt = endsAt
	item.IsPinned = req.IsPinned
	if item.Title == "" || item.Body == "" {
		return badRequest("title and body must contain text")
	}
	return nil
}

func (s *announcementService) afterMutation(ctx context.Context, actor Actor, action string, id uint) {
	cacheInvalidatePrefix(ctx, s.cache, s.logger, announcementCachePrefix)
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     action,
		TargetType: "announcement",
		TargetID:   uintPtr(id),
	})
}

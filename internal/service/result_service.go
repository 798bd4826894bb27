package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// ResultService manages result visibility.
type ResultService interface {
	// Mine returns a page of the caller's published results only.
	Mine(ctx context.Context, userID uint, page, pageSize int) (dto.ExamResultListResponse, error)
	List(ctx context.Context, req dto.ExamResultListRequest) (dto.ExamResultListResponse, error)
	Publish(ctx context.Context, id uint, actor Actor) (dto.ExamResultResponse, error)
	Unpublish(ctx context.Context, id uint, actor Actor) (dto.ExamResultResponse, error)
}

type resultService struct {
	repo   repository.ExamResultRepository
	audit  AuditRecorder
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewResultService constructs the result service. cache may be nil.
func NewResultService(repo repository.ExamResultRepository, audit AuditRecorder, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ResultService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &resultService{
		repo:   repo,
		audit:  audit,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "result_service").Logger(),
		now:    time.Now,
	}
}

func (s *resultService) Mine(ctx context.Context, userID uint, page, pageSize int) (dto.ExamResultListResponse, error) {
	page = normalizePage(page)
	pageSize = clampPageSize(pageSize)
	key := resultsCacheKey(userID, page, pageSize)
	var cached dto.ExamResultListResponse
	if cacheGet(ctx, s.cache, "results", key, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	published := true
	response, err := s.list(ctx, repository.ExamResultFilter{UserID: &userID, Published: &published, Page: page, PageSize: pageSize})
	if err != nil {
		return dto.ExamResultListResponse{}, err
	}

	cacheSet(ctx, s.cache, s.logger, key, response, s.ttl)
	return response, nil
}

func (s *resultService) List(ctx context.Context, req dto.ExamResultListRequest) (dto.ExamResultListResponse, error) {
	filter := repository.ExamResultFilter{
		Published: req.Published,
		Page:      normalizePage(req.Page),
		PageSize:  clampPageSize(req.PageSize),
	}
	if req.ExamID > 0 {
		filter.ExamID = uintPtr(req.ExamID)
	}
	if req.UserID > 0 {
		filter.UserID = uintPtr(req.UserID)
	}
	return s.list(ctx, filter)
}

func (s *resultService) list(ctx context.Context, filter repository.ExamResultFilter) (dto.ExamResultListResponse, error) {
	results, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ExamResultListResponse{}, err
	}
	items := make([]dto.ExamResultResponse, 0, len(results))
	for _, result := range results {
		items = append(items, dto.NewExamResultResponse(result))
	}
	return dto.ExamResultListResponse{Items: items, Pagination: buildPagination(filter.Page, filter.PageSize, total)}, nil
}

func (s *resultService) Publish(ctx context.Context, id uint, actor Actor) (dto.ExamResultResponse, error) {
	return s.setPublished(ctx, id, true, actor)
}

func (s *resultService) Unpublish(ctx context.Context, id uint, actor Actor) (dto.ExamResultResponse, error) {
	return s.setPublished(ctx, id, false, actor)
}

func (s *resultService) setPublished(ctx context.Context, id uint, published bool, actor Actor) (dto.ExamResultResponse, error) {
	result, err := s.repo.SetPublished(ctx, id, published, actor.ID, s.now())
	if err != nil {
		return dto.ExamResultResponse{}, translateStoreError(err, "exam result")
	}

	cacheInvalidatePrefix(ctx, s.cache, s.logger, resultsCachePrefix(result.UserID))
	cacheInvalidate(ctx, s.cache, s.logger, dashboardCacheKey(result.UserID))

	action := "exam_result.unpublished"
	if published {
		action = "exam_result.published"
	}
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     action,
		TargetType: "exam_result",
		TargetID:   uintPtr(id),
		Metadata:   map[string]interface{}{"user_id": result.UserID, "exam_id": result.ExamID, "score": result.Score},
	})
	return dto.NewExamResultResponse(result), nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

const maxSlugAttempts = 50

// BlogService manages blog posts.
type BlogService interface {
	ListPublished(ctx context.Context, req dto.ContentListRequest) (dto.BlogListResponse, error)
	GetPublished(ctx context.Context, slug string) (dto.BlogPostResponse, error)
	AdminList(ctx context.Context, req dto.ContentListRequest) (dto.BlogListResponse, error)
	AdminGet(ctx context.Context, id uint) (dto.BlogPostResponse, error)
	Create(ctx context.Context, req dto.BlogPostRequest, actor Actor) (dto.BlogPostResponse, error)
	Update(ctx context.Context, id uint, req dto.BlogPostRequest, actor Actor) (dto.BlogPostResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type blogService struct {
	repo      repository.BlogRepository
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer contentSanitizer
	now       func() time.Time
}

// NewBlogService constructs the blog service.
func NewBlogService(repo repository.BlogRepository, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) BlogService {
	return &blogService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "blog_service").Logger(),
		sanitizer: newContentSanitizer(),
		now:       time.Now,
	}
}

func (s *blogService) ListPublished(ctx context.Context, req dto.ContentListRequest) (dto.BlogListResponse, error) {
	return s.list(ctx, req, true)
}

func (s *blogService) AdminList(ctx context.Context, req dto.ContentListRequest) (dto.BlogListResponse, error) {
	return s.list(ctx, req, false)
}

func (s *blogService) list(ctx context.Context, req dto.ContentListRequest, publishedOnly bool) (dto.BlogListResponse, error) {
	filter := repository.BlogFilter{
		PublishedOnly: publishedOnly,
		Search:        strings.TrimSpace(req.Search),
		Page:          normalizePage(req.Page),
		PageSize:      clampPageSize(req.PageSize),
	}
	if tags := sanitizeTags(req.Tags); len(tags) > 0 {
		filter.Tag = tags[0]
	}

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.BlogListResponse{}, err
	}

	items := make([]dto.BlogPostResponse, 0, len(posts))
	for _, post := range posts {
		items = append(items, dto.NewBlogPostResponse(post))
	}
	return dto.BlogListResponse{Items: items, Pagination: buildPagination(filter.Page, filter.PageSize, total)}, nil
}

func (s *blogService) GetPublished(ctx context.Context, slug string) (dto.BlogPostResponse, error) {
	post, err := s.repo.GetPublishedBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return dto.BlogPostResponse{}, translateStoreError(err, "blog post")
	}
	return dto.NewBlogPostResponse(post), nil
}

func (s *blogService) AdminGet(ctx context.Context, id uint) (dto.BlogPostResponse, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.BlogPostResponse{}, translateStoreError(err, "blog post")
	}
	return dto.NewBlogPostResponse(post), nil
}

func (s *blogService) Create(ctx context.Context, req dto.BlogPostRequest, actor Actor) (dto.BlogPostResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BlogPostResponse{}, err
	}

	post := models.BlogPost{AuthorID: actor.ID}
	if err := s.apply(&post, req); err != nil {
		return dto.BlogPostResponse{}, err
	}

	slug, err := s.uniqueSlug(ctx, post.Title, 0)
	if err != nil {
		return dto.BlogPostResponse{}, err
	}
	post.Slug = slug

	if err := s.repo.Create(ctx, &post); err != nil {
		return dto.BlogPostResponse{}, translateStoreError(err, "blog post")
	}

	s.recordActivity(ctx, actor, "blog.created", post)
	return dto.NewBlogPostResponse(post), nil
}

func (s *blogService) Update(ctx context.Context, id uint, req dto.BlogPostRequest, actor Actor) (dto.BlogPostResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BlogPostResponse{}, err
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.BlogPostResponse{}, translateStoreError(err, "blog post")
	}

	previousTitle := post.Title
	if err := s.apply(&post, req); err != nil {
		return dto.BlogPostResponse{}, err
	}
	if post.Title != previousTitle {
		slug, err := s.uniqueSlug(ctx, post.Title, post.ID)
		if err != nil {
			return dto.BlogPostResponse{}, err
		}
		post.Slug = slug
	}

	if err := s.repo.Update(ctx, &post); err != nil {
		return dto.BlogPostResponse{}, translateStoreError(err, "blog post")
	}

	s.recordActivity(ctx, actor, "blog.updated", post)
	return dto.NewBlogPostResponse(post), nil
}

func (s *blogService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateStoreError(err, "blog post")
	}
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "blog.deleted",
		TargetType: "blog_post",
		TargetID:   uintPtr(id),
	})
	return nil
}

func (s *blogService) apply(post *models.BlogPost, req dto.BlogPostRequest) error {
	post.Title = s.sanitizer.Text(req.Title)
	post.Body = s.sanitizer.HTML(req.Body)
	post.Excerpt = s.sanitizer.Text(req.Excerpt)
	post.CoverImageURL = strings.TrimSpace(req.CoverImageURL)
	post.Tags = sanitizeTags(req.Tags)
	if post.Title == "" || post.Body == "" {
		return badRequest("title and body must contain text")
	}

	status := req.Status
	if status == "" {
		status = models.BlogStatusDraft
	}
	switch status {
	case models.BlogStatusPublished:
		if post.PublishedAt == nil {
			publishedAt := s.now().UTC()
			post.PublishedAt = &publishedAt
		}
	default:
		post.PublishedAt = nil
	}
	post.Status = status
	return nil
}

// uniqueSlug derives a slug from title, appending -2, -3, ... until it is free.
func (s *blogService) uniqueSlug(ctx context.Context, title string, excludeID uint) (string, error) {
	base := generateContentSlug(title)
	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts; attempt++ {
		exists, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", conflict("could not allocate a unique slug for %q", title)
}

func (s *blogService) recordActivity(ctx context.Context, actor Actor, action string, post models.BlogPost) {
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     action,
		TargetType: "blog_post",
		TargetID:   uintPtr(post.ID),
		Metadata:   map[string]interface{}{"slug": post.Slug, "status": post.Status},
	})
}

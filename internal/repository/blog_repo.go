package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// BlogFilter narrows blog post queries.
type BlogFilter struct {
	PublishedOnly bool
	Tag           string
	Search        string
	Page          int
	PageSize      int
}

// BlogRepository manages blog posts.
type BlogRepository interface {
	List(ctx context.Context, filter BlogFilter) ([]models.BlogPost, int64, error)
	GetByID(ctx context.Context, id uint) (models.BlogPost, error)
	GetPublishedBySlug(ctx context.Context, slug string) (models.BlogPost, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, post *models.BlogPost) error
	Delete(ctx context.Context, id uint) error
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository constructs the blog repository.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) List(ctx context.Context, filter BlogFilter) ([]models.BlogPost, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BlogPost{})
	if filter.PublishedOnly {
		query = query.Where("status = ?", models.BlogStatusPublished)
	}
	if tag := strings.TrimSpace(strings.ToLower(filter.Tag)); tag != "" {
		query = query.Where("tags LIKE ?", "%|"+tag+"|%")
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ?", pattern, pattern)
	}

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var posts []models.BlogPost
	if err := query.Order("COALESCE(published_at, created_at) DESC").Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).First(&post, id).Error
	return post, err
}

func (r *blogRepository) GetPublishedBySlug(ctx context.Context, slug string) (models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, models.BlogStatusPublished).
		First(&post).Error
	return post, err
}

func (r *blogRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *blogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *blogRepository) Update(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.BlogPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// ExamResultFilter narrows result listings.
type ExamResultFilter struct {
	ExamID    *uint
	UserID    *uint
	Published *bool
	Page      int
	PageSize  int
}

// ExamResultRepository persists exam results and their publication state.
type ExamResultRepository interface {
	List(ctx context.Context, filter ExamResultFilter) ([]models.ExamResult, int64, error)
	GetByID(ctx context.Context, id uint) (models.ExamResult, error)
	SetPublished(ctx context.Context, id uint, published bool, actorID uint, at time.Time) (models.ExamResult, error)
	CountUnpublished(ctx context.Context) (int64, error)
}

type examResultRepository struct {
	db *gorm.DB
}

// NewExamResultRepository constructs the result repository.
func NewExamResultRepository(db *gorm.DB) ExamResultRepository {
	return &examResultRepository{db: db}
}

func (r *examResultRepository) List(ctx context.Context, filter ExamResultFilter) ([]models.ExamResult, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ExamResult{})
	if filter.ExamID != nil {
		query = query.Where("exam_id = ?", *filter.ExamID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Published != nil {
		query = query.Where("is_published = ?", *filter.Published)
	}

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var results []models.ExamResult
	if err := query.Preload("Exam").Preload("User").Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *examResultRepository) GetByID(ctx context.Context, id uint) (models.ExamResult, error) {
	var result models.ExamResult
	err := r.db.WithContext(ctx).Preload("Exam").First(&result, id).Error
	return result, err
}

func (r *examResultRepository) SetPublished(ctx context.Context, id uint, published bool, actorID uint, at time.Time) (models.ExamResult, error) {
	updates := map[string]interface{}{"is_published": published}
	if published {
		updates["published_by"] = actorID
		updates["published_at"] = at
	} else {
		updates["published_by"] = nil
		updates["published_at"] = nil
	}

	result := r.db.WithContext(ctx).Model(&models.ExamResult{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.ExamResult{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.ExamResult{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *examResultRepository) CountUnpublished(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ExamResult{}).Where("is_published = ?", false).Count(&total).Error
	return total, err
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// AdvertisementFilter narrows advertisement queries.
type AdvertisementFilter struct {
	Placement string
	Page      int
	PageSize  int
}

// AdvertisementRepository manages sponsored banners.
type AdvertisementRepository interface {
	ListLive(ctx context.Context, placement string, now time.Time) ([]models.Advertisement, error)
	List(ctx context.Context, filter AdvertisementFilter) ([]models.Advertisement, int64, error)
	GetByID(ctx context.Context, id uint) (models.Advertisement, error)
	Create(ctx context.Context, ad *models.Advertisement) error
	Update(ctx context.Context, ad *models.Advertisement) error
	Delete(ctx context.Context, id uint) error
}

type advertisementRepository struct {
	db *gorm.DB
}

// NewAdvertisementRepository constructs the advertisement repository.
func NewAdvertisementRepository(db *gorm.DB) AdvertisementRepository {
	return &advertisementRepository{db: db}
}

func (r *advertisementRepository) ListLive(ctx context.Context, placement string, now time.Time) ([]models.Advertisement, error) {
	query := r.db.WithContext(ctx).Model(&models.Advertisement{}).
		Where("is_active = ? AND starts_at <= ? AND (ends_at IS NULL OR ends_at >= ?)", true, now, now)
	if placement != "" {
		query = query.Where("placement = ?", placement)
	}
	var ads []models.Advertisement
	err := query.Order("starts_at DESC").Find(&ads).Error
	return ads, err
}

func (r *advertisementRepository) List(ctx context.Context, filter AdvertisementFilter) ([]models.Advertisement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Advertisement{})
	if filter.Placement != "" {
		query = query.Where("placement = ?", filter.Placement)
	}

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var ads []models.Advertisement
	if err := query.Order("created_at DESC").Find(&ads).Error; err != nil {
		return nil, 0, err
	}
	return ads, total, nil
}

func (r *advertisementRepository) GetByID(ctx context.Context, id uint) (models.Advertisement, error) {
	var ad models.Advertisement
	err := r.db.WithContext(ctx).First(&ad, id).Error
	return ad, err
}

func (r *advertisementRepository) Create(ctx context.Context, ad *models.Advertisement) error {
	return r.db.WithContext(ctx).Create(ad).Error
}

func (r *advertisementRepository) Update(ctx context.Context, ad *models.Advertisement) error {
	return r.db.WithContext(ctx).Save(ad).Error
}

func (r *advertisementRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Advertisement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

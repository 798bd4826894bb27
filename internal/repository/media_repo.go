package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// MediaRepository stores metadata about uploaded files.
type MediaRepository interface {
	Create(ctx context.Context, asset *models.MediaAsset) error
	List(ctx context.Context, page, pageSize int) ([]models.MediaAsset, int64, error)
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository constructs the media repository.
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, asset *models.MediaAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *mediaRepository) List(ctx context.Context, page, pageSize int) ([]models.MediaAsset, int64, error) {
	query, total, err := countAndPaginate(r.db.WithContext(ctx).Model(&models.MediaAsset{}), page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	var assets []models.MediaAsset
	if err := query.Order("created_at DESC").Find(&assets).Error; err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// HomepageRepository manages landing page sections.
type HomepageRepository interface {
	List(ctx context.Context, visibleOnly bool) ([]models.HomepageSection, error)
	GetByID(ctx context.Context, id uint) (models.HomepageSection, error)
	Create(ctx context.Context, section *models.HomepageSection) error
	Update(ctx context.Context, section *models.HomepageSection) error
	Delete(ctx context.Context, id uint) error
	// EnsureDefaults inserts sections whose key is missing and leaves existing ones untouched.
	EnsureDefaults(ctx context.Context, sections []models.HomepageSection) (int64, error)
}

type homepageRepository struct {
	db *gorm.DB
}

// NewHomepageRepository constructs the homepage repository.
func NewHomepageRepository(db *gorm.DB) HomepageRepository {
	return &homepageRepository{db: db}
}

func (r *homepageRepository) List(ctx context.Context, visibleOnly bool) ([]models.HomepageSection, error) {
	query := r.db.WithContext(ctx).Model(&models.HomepageSection{})
	if visibleOnly {
		query = query.Where("is_visible = ?", true)
	}
	var sections []models.HomepageSection
	err := query.Order("position ASC, id ASC").Find(&sections).Error
	return sections, err
}

func (r *homepageRepository) GetByID(ctx context.Context, id uint) (models.HomepageSection, error) {
	var section models.HomepageSection
	err := r.db.WithContext(ctx).First(&section, id).Error
	return section, err
}

func (r *homepageRepository) Create(ctx context.Context, section *models.HomepageSection) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *homepageRepository) Update(ctx context.Context, section *models.HomepageSection) error {
	return r.db.WithContext(ctx).Save(section).Error
}

func (r *homepageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.HomepageSection{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *homepageRepository) EnsureDefaults(ctx context.Context, sections []models.HomepageSection) (int64, error) {
	if len(sections) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	})

	result := tx.Create(&sections)
	return result.RowsAffected, result.Error
}

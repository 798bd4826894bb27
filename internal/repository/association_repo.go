package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// AssociationRepository manages regional chapters.
type AssociationRepository interface {
	List(ctx context.Context) ([]models.Association, error)
	GetByID(ctx context.Context, id uint) (models.Association, error)
	Create(ctx context.Context, association *models.Association) error
	Update(ctx context.Context, association *models.Association) error
}

type associationRepository struct {
	db *gorm.DB
}

// NewAssociationRepository constructs the association repository.
func NewAssociationRepository(db *gorm.DB) AssociationRepository {
	return &associationRepository{db: db}
}

func (r *associationRepository) List(ctx context.Context) ([]models.Association, error) {
	var items []models.Association
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *associationRepository) GetByID(ctx context.Context, id uint) (models.Association, error) {
	var item models.Association
	err := r.db.WithContext(ctx).First(&item, id).Error
	return item, err
}

func (r *associationRepository) Create(ctx context.Context, association *models.Association) error {
	return r.db.WithContext(ctx).Create(association).Error
}

func (r *associationRepository) Update(ctx context.Context, association *models.Association) error {
	return r.db.WithContext(ctx).Save(association).Error
}

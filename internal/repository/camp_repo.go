package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// CampFilter narrows camp listings.
type CampFilter struct {
	OpenOnly bool
	Page     int
	PageSize int
}

// CampRepository manages camps and their registrations.
type CampRepository interface {
	List(ctx context.Context, filter CampFilter) ([]models.Camp, int64, error)
	GetByID(ctx context.Context, id uint) (models.Camp, error)
	Create(ctx context.Context, camp *models.Camp) error
	Update(ctx context.Context, camp *models.Camp) error
	CreateRegistration(ctx context.Context, registration *models.CampRegistration) error
	RegistrationExists(ctx context.Context, campID, userID uint) (bool, error)
	ListRegistrations(ctx context.Context, campID *uint, page, pageSize int) ([]models.CampRegistration, int64, error)
	CountRegistrationsByUser(ctx context.Context, userID uint) (int64, error)
	CountOpen(ctx context.Context) (int64, error)
}

type campRepository struct {
	db *gorm.DB
}

// NewCampRepository constructs the camp repository.
func NewCampRepository(db *gorm.DB) CampRepository {
	return &campRepository{db: db}
}

func (r *campRepository) List(ctx context.Context, filter CampFilter) ([]models.Camp, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Camp{})
	if filter.OpenOnly {
		query = query.Where("is_open = ?", true)
	}

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var camps []models.Camp
	if err := query.Order("starts_at ASC").Find(&camps).Error; err != nil {
		return nil, 0, err
	}
	return camps, total, nil
}

func (r *campRepository) GetByID(ctx context.Context, id uint) (models.Camp, error) {
	var camp models.Camp
	err := r.db.WithContext(ctx).First(&camp, id).Error
	return camp, err
}

func (r *campRepository) Create(ctx context.Context, camp *models.Camp) error {
	return r.db.WithContext(ctx).Create(camp).Error
}

func (r *campRepository) Update(ctx context.Context, camp *models.Camp) error {
	return r.db.WithContext(ctx).Save(camp).Error
}

func (r *campRepository) CreateRegistration(ctx context.Context, registration *models.CampRegistration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *campRepository) RegistrationExists(ctx context.Context, campID, userID uint) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.CampRegistration{}).
		Where("camp_id = ? AND user_id = ?", campID, userID).
		Count(&total).Error
	return total > 0, err
}

func (r *campRepository) ListRegistrations(ctx context.Context, campID *uint, page, pageSize int) ([]models.CampRegistration, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CampRegistration{})
	if campID != nil {
		query = query.Where("camp_id = ?", *campID)
	}

	query, total, err := countAndPaginate(query, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	var registrations []models.CampRegistration
	if err := query.Preload("User").Order("created_at ASC, id ASC").Find(&registrations).Error; err != nil {
		return nil, 0, err
	}
	return registrations, total, nil
}

func (r *campRepository) CountRegistrationsByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.CampRegistration{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

func (r *campRepository) CountOpen(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Camp{}).Where("is_open = ?", true).Count(&total).Error
	return total, err
}

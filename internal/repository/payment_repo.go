package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	UserID   *uint
	Status   string
	Type     string
	Page     int
	PageSize int
}

// PaymentVerification describes the terminal transition applied to a pending payment.
type PaymentVerification struct {
	Status     string
	Reason     string
	VerifiedBy uint
	VerifiedAt time.Time
}

// PaymentRepository persists payment receipts.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (models.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error)
	// Verify applies the verification only while the payment is pending.
	// It returns ErrStaleRecord when the payment was already verified.
	Verify(ctx context.Context, id uint, verification PaymentVerification) (models.Payment, error)
	CountByStatus(ctx context.Context, userID *uint) (map[string]int64, error)
	CountPendingByAssociation(ctx context.Context, associationID uint) (int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository constructs the payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Preload("User").First(&payment, id).Error
	return payment, err
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	if err := query.Preload("User").Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *paymentRepository) Verify(ctx context.Context, id uint, verification PaymentVerification) (models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, id).Error; err != nil {
			return err
		}

		update := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", id, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":           verification.Status,
				"rejection_reason": verification.Reason,
				"verified_by":      verification.VerifiedBy,
				"verified_at":      verification.VerifiedAt,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return ErrStaleRecord
		}

		return tx.Preload("User").First(&payment, id).Error
	})
	return payment, err
}

type statusCount struct {
	Status string
	Total  int64
}

func (r *paymentRepository) CountByStatus(ctx context.Context, userID *uint) (map[string]int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).Select("status, COUNT(*) AS total").Group("status")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var rows []statusCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{
		models.PaymentStatusPending:  0,
		models.PaymentStatusApproved: 0,
		models.PaymentStatusRejected: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *paymentRepository) CountPendingByAssociation(ctx context.Context, associationID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Joins("JOIN users ON users.id = payments.user_id").
		Where("users.association_id = ? AND payments.status = ? AND users.deleted_at IS NULL", associationID, models.PaymentStatusPending).
		Count(&total).Error
	return total, err
}

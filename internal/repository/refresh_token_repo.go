package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// RefreshTokenRepository manages the per-user list of refresh token hashes.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	// Consume deletes the token and reports whether it was still present.
	Consume(ctx context.Context, hash string) (bool, error)
	DeleteExpired(ctx context.Context, userID uint, now time.Time) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository constructs the refresh token repository.
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *refreshTokenRepository) Consume(ctx context.Context, hash string) (bool, error) {
	result := r.db.WithContext(ctx).Where("token_hash = ?", hash).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, userID uint, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at <= ?", userID, now).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (r *refreshTokenRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.RefreshToken{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

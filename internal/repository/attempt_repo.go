package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// AttemptRepository persists exam attempts.
type AttemptRepository interface {
	FindInProgress(ctx context.Context, userID, examID uint) (models.ExamAttempt, error)
	Create(ctx context.Context, attempt *models.ExamAttempt) error
	GetByID(ctx context.Context, id uint) (models.ExamAttempt, error)
	// Finalize moves an in-progress attempt to its submitted state and stores its result.
	// It returns ErrStaleRecord when the attempt is no longer in progress.
	Finalize(ctx context.Context, attempt *models.ExamAttempt, result *models.ExamResult) error
	CountByUser(ctx context.Context, userID uint, statuses ...string) (int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository constructs the attempt repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) FindInProgress(ctx context.Context, userID, examID uint) (models.ExamAttempt, error) {
	var attempt models.ExamAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND exam_id = ? AND status = ?", userID, examID, models.AttemptStatusInProgress).
		Order("started_at DESC").
		First(&attempt).Error
	return attempt, err
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.ExamAttempt, error) {
	var attempt models.ExamAttempt
	err := r.db.WithContext(ctx).First(&attempt, id).Error
	return attempt, err
}

func (r *attemptRepository) Finalize(ctx context.Context, attempt *models.ExamAttempt, result *models.ExamResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.ExamAttempt{}).
			Where("id = ? AND status = ?", attempt.ID, models.AttemptStatusInProgress).
			Updates(map[string]interface{}{
				"answers":      attempt.Answers,
				"score":        attempt.Score,
				"passed":       attempt.Passed,
				"status":       attempt.Status,
				"late":         attempt.Late,
				"submitted_at": attempt.SubmittedAt,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return ErrStaleRecord
		}

		if result != nil {
			result.AttemptID = attempt.ID
			if err := tx.Create(result).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *attemptRepository) CountByUser(ctx context.Context, userID uint, statuses ...string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ExamAttempt{}).Where("user_id = ?", userID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var total int64
	err := query.Count(&total).Error
	return total, err
}

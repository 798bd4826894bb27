package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// UserCodeCounter names the counter backing sequential user codes.
const UserCodeCounter = "user_code"

// UserFilter narrows user listings.
type UserFilter struct {
	Search        string
	Role          string
	Status        string
	AssociationID *uint
	Page          int
	PageSize      int
}

// RegisterOptions controls the transactional pieces of a registration.
type RegisterOptions struct {
	CodePrefix string
	// PresidentOf reassigns the association's president pointer to the new user.
	PresidentOf *uint
}

// UserRepository exposes persistence helpers for users.
type UserRepository interface {
	Register(ctx context.Context, user *models.User, opts RegisterOptions) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error)
	SoftDelete(ctx context.Context, id uint) error
	CountByRole(ctx context.Context) (map[string]int64, error)
	CountByAssociation(ctx context.Context, associationID uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Register(ctx context.Context, user *models.User, opts RegisterOptions) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextCounterValue(tx, UserCodeCounter)
		if err != nil {
			return err
		}
		user.Code = fmt.Sprintf("%s%06d", opts.CodePrefix, next)

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if opts.PresidentOf != nil {
			update := tx.Model(&models.Association{}).
				Where("id = ?", *opts.PresidentOf).
				Updates(map[string]interface{}{"president_id": user.ID, "updated_at": time.Now()})
			if update.Error != nil {
				return update.Error
			}
			if update.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		return nil
	})
}

// nextCounterValue increments the named counter inside tx and returns the new value.
// The UPDATE takes the row lock, so concurrent registrations serialise on it.
func nextCounterValue(tx *gorm.DB, name string) (int64, error) {
	update := tx.Model(&models.Counter{}).Where("name = ?", name).Update("value", gorm.Expr("value + 1"))
	if update.Error != nil {
		return 0, update.Error
	}
	if update.RowsAffected == 0 {
		counter := models.Counter{Name: name, Value: 1}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
		return counter.Value, nil
	}

	var counter models.Counter
	if err := tx.Where("name = ?", name).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// EmailTaken also considers soft-deleted accounts since they keep the unique index.
func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(code) LIKE ?", like, like, like)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssociationID != nil {
		query = query.Where("association_id = ?", *filter.AssociationID)
	}

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error
	})
}

func (r *userRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Role  string
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}

func (r *userRepository) CountByAssociation(ctx context.Context, associationID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("association_id = ?", associationID).
		Count(&total).Error
	return total, err
}

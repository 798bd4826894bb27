package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// ErrUnknownQuestion is returned when an update references a question id the exam does not own.
var ErrUnknownQuestion = errors.New("question does not belong to exam")

// ExamFilter narrows exam listings.
type ExamFilter struct {
	ActiveOnly bool
	Search     string
	Page       int
	PageSize   int
}

// ExamRepository manages exams and their question sets.
type ExamRepository interface {
	List(ctx context.Context, filter ExamFilter) ([]models.Exam, int64, error)
	GetByID(ctx context.Context, id uint) (models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	// Replace updates exam fields and reconciles its question set, keeping ids of retained questions.
	Replace(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id uint) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository constructs the exam repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func (r *examRepository) List(ctx context.Context, filter ExamFilter) ([]models.Exam, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Exam{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+filter.Search+"%")
	}

	query, total, err := countAndPaginate(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var exams []models.Exam
	if err := query.Order("created_at DESC").Find(&exams).Error; err != nil {
		return nil, 0, err
	}
	return exams, total, nil
}

func (r *examRepository) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	err := r.db.WithContext(ctx).Preload("Questions", orderedQuestions).First(&exam, id).Error
	return exam, err
}

func (r *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) Replace(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Exam{}).Where("id = ?", exam.ID).Updates(map[string]interface{}{
			"title":            exam.Title,
			"description":      exam.Description,
			"duration_minutes": exam.DurationMinutes,
			"pass_score":       exam.PassScore,
			"is_active":        exam.IsActive,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return syncQuestions(tx, exam)
	})
}

// syncQuestions updates the stored question set in place so attempts keyed by question id keep grading.
// A question matches a stored one by id, or by position when it carries no id. Unmatched stored
// questions are deleted and unmatched incoming ones inserted.
func syncQuestions(tx *gorm.DB, exam *models.Exam) error {
	var stored []models.ExamQuestion
	if err := tx.Where("exam_id = ?", exam.ID).Find(&stored).Error; err != nil {
		return err
	}

	byID := make(map[uint]models.ExamQuestion, len(stored))
	for _, q := range stored {
		byID[q.ID] = q
	}
	claimed := make(map[uint]bool, len(stored))
	for _, q := range exam.Questions {
		if q.ID == 0 {
			continue
		}
		if _, ok := byID[q.ID]; !ok {
			return ErrUnknownQuestion
		}
		if claimed[q.ID] {
			return ErrUnknownQuestion
		}
		claimed[q.ID] = true
	}

	for i := range exam.Questions {
		question := &exam.Questions[i]
		question.ExamID = exam.ID
		if question.ID == 0 {
			for _, candidate := range stored {
				if !claimed[candidate.ID] && candidate.Position == question.Position {
					question.ID = candidate.ID
					claimed[candidate.ID] = true
					break
				}
			}
		}

		if question.ID == 0 {
			if err := tx.Create(question).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Model(&models.ExamQuestion{}).Where("id = ?", question.ID).Updates(map[string]interface{}{
			"prompt":         question.Prompt,
			"options":        question.Options,
			"correct_answer": question.CorrectAnswer,
			"points":         question.Points,
			"position":       question.Position,
		}).Error; err != nil {
			return err
		}
	}

	removed := make([]uint, 0)
	for _, q := range stored {
		if !claimed[q.ID] {
			removed = append(removed, q.ID)
		}
	}
	if len(removed) > 0 {
		if err := tx.Where("id IN ?", removed).Delete(&models.ExamQuestion{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *examRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&models.ExamQuestion{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Exam{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

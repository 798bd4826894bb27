package models

import (
	"time"

	"gorm.io/datatypes"
)

// Exam attempt statuses.
const (
	AttemptStatusInProgress    = "in-progress"
	AttemptStatusSubmitted     = "submitted"
	AttemptStatusGraded        = "graded"
	AttemptStatusAutoSubmitted = "auto-submitted"
)

// AnswerSheet maps question ids to the selected option index.
type AnswerSheet map[string]int

// Exam is a timed multiple-choice exam.
type Exam struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	DurationMinutes int            `gorm:"not null;default:0" json:"duration_minutes"`
	PassScore       float64        `gorm:"not null;default:0" json:"pass_score"`
	IsActive        bool           `gorm:"index;not null;default:false" json:"is_active"`
	Questions       []ExamQuestion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Expired reports whether an attempt started at startedAt has run past the exam duration at now.
// A zero duration means the exam is untimed.
func (e Exam) Expired(startedAt, now time.Time) bool {
	if e.DurationMinutes <= 0 {
		return false
	}
	return now.Sub(startedAt) > time.Duration(e.DurationMinutes)*time.Minute
}

// ExamQuestion is a single multiple-choice question.
type ExamQuestion struct {
	ID            uint                         `gorm:"primaryKey" json:"id"`
	ExamID        uint                         `gorm:"index;not null" json:"exam_id"`
	Prompt        string                       `gorm:"type:text;not null" json:"prompt"`
	Options       datatypes.JSONType[[]string] `gorm:"type:json" json:"options"`
	CorrectAnswer int                          `gorm:"not null" json:"correct_answer"`
	Points        float64                      `gorm:"not null;default:1" json:"points"`
	Position      int                          `gorm:"not null;default:0" json:"position"`
}

// ExamAttempt is one user's timed pass at an exam.
type ExamAttempt struct {
	ID          uint                            `gorm:"primaryKey" json:"id"`
	UserID      uint                            `gorm:"index:idx_attempt_user_exam;not null" json:"user_id"`
	ExamID      uint                            `gorm:"index:idx_attempt_user_exam;not null" json:"exam_id"`
	Answers     datatypes.JSONType[AnswerSheet] `gorm:"type:json" json:"answers"`
	Score       *float64                        `json:"score"`
	Passed      *bool                           `json:"passed"`
	Status      string                          `gorm:"size:32;index;not null" json:"status"`
	Late        bool                            `gorm:"not null;default:false" json:"late"`
	StartedAt   time.Time                       `gorm:"not null" json:"started_at"`
	SubmittedAt *time.Time                      `json:"submitted_at"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

// ExamResult is the gradable outcome of an attempt. Owners only see it once published.
type ExamResult struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AttemptID   uint       `gorm:"uniqueIndex;not null" json:"attempt_id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	ExamID      uint       `gorm:"index;not null" json:"exam_id"`
	Score       float64    `gorm:"not null" json:"score"`
	Passed      bool       `gorm:"not null" json:"passed"`
	Late        bool       `gorm:"not null;default:false" json:"late"`
	IsPublished bool       `gorm:"index;not null;default:false" json:"is_published"`
	PublishedBy *uint      `json:"published_by"`
	PublishedAt *time.Time `json:"published_at"`
	Exam        Exam       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User        User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

package dto

import (
	"time"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// ExamQuestionRequest describes one multiple-choice question.
type ExamQuestionRequest struct {
	ID            uint     `json:"id"`
	Prompt        string   `json:"prompt" validate:"required,min=3"`
	Options       []string `json:"options" validate:"required,min=2,max=10,dive,required"`
	CorrectAnswer int      `json:"correct_answer" validate:"gte=0"`
	Points        float64  `json:"points" validate:"gte=0"`
}

// ExamRequest creates or replaces an exam with its questions.
type ExamRequest struct {
	Title           string                `json:"title" validate:"required,min=3,max=255"`
	Description     string                `json:"description" validate:"omitempty,max=5000"`
	DurationMinutes int                   `json:"duration_minutes" validate:"gte=0,lte=1440"`
	PassScore       float64               `json:"pass_score" validate:"gte=0,lte=100"`
	IsActive        bool                  `json:"is_active"`
	Questions       []ExamQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// ExamQuestionResponse serializes a question. CorrectAnswer is only set for administrators.
type ExamQuestionResponse struct {
	ID            uint     `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	Points        float64  `json:"points"`
	Position      int      `json:"position"`
	CorrectAnswer *int     `json:"correct_answer,omitempty"`
}

// ExamResponse serializes an exam.
type ExamResponse struct {
	ID              uint                   `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	DurationMinutes int                    `json:"duration_minutes"`
	PassScore       float64                `json:"pass_score"`
	IsActive        bool                   `json:"is_active"`
	Questions       []ExamQuestionResponse `json:"questions,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// NewExamResponse converts an exam model. Answer keys are included only when withAnswers is true.
func NewExamResponse(exam models.Exam, withAnswers bool) ExamResponse {
	questions := make([]ExamQuestionResponse, 0, len(exam.Questions))
	for _, q := range exam.Questions {
		item := ExamQuestionResponse{
			ID:       q.ID,
			Prompt:   q.Prompt,
			Options:  append([]string(nil), q.Options.Data()...),
			Points:   q.Points,
			Position: q.Position,
		}
		if withAnswers {
			correct := q.CorrectAnswer
			item.CorrectAnswer = &correct
		}
		questions = append(questions, item)
	}

	return ExamResponse{
		ID:              exam.ID,
		Title:           exam.Title,
		Description:     exam.Description,
		DurationMinutes: exam.DurationMinutes,
		PassScore:       exam.PassScore,
		IsActive:        exam.IsActive,
		Questions:       questions,
		CreatedAt:       exam.CreatedAt,
	}
}

// ExamListResponse wraps a paginated exam list.
type ExamListResponse struct {
	Items      []ExamResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// SubmitAttemptRequest carries the answers keyed by question id.
type SubmitAttemptRequest struct {
	Answers map[string]int `json:"answers" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
}

// AttemptResponse serializes an exam attempt.
type AttemptResponse struct {
	ID          uint           `json:"id"`
	ExamID      uint           `json:"exam_id"`
	UserID      uint           `json:"user_id"`
	Status      string         `json:"status"`
	Late        bool           `json:"late"`
	Answers     map[string]int `json:"answers"`
	Score       *float64       `json:"score,omitempty"`
	Passed      *bool          `json:"passed,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
}

// NewAttemptResponse converts an attempt model. Score and pass flag are hidden unless revealScore is true.
func NewAttemptResponse(attempt models.ExamAttempt, exam models.Exam, revealScore bool) AttemptResponse {
	answers := map[string]int{}
	for key, value := range attempt.Answers.Data() {
		answers[key] = value
	}

	response := AttemptResponse{
		ID:          attempt.ID,
		ExamID:      attempt.ExamID,
		UserID:      attempt.UserID,
		Status:      attempt.Status,
		Late:        attempt.Late,
		Answers:     answers,
		StartedAt:   attempt.StartedAt,
		SubmittedAt: attempt.SubmittedAt,
	}
	if exam.DurationMinutes > 0 {
		expires := attempt.StartedAt.Add(time.Duration(exam.DurationMinutes) * time.Minute)
		response.ExpiresAt = &expires
	}
	if revealScore {
		response.Score = attempt.Score
		response.Passed = attempt.Passed
	}
	return response
}

// ExamResultResponse serializes an exam result.
type ExamResultResponse struct {
	ID          uint       `json:"id"`
	AttemptID   uint       `json:"attempt_id"`
	UserID      uint       `json:"user_id"`
	ExamID      uint       `json:"exam_id"`
	ExamTitle   string     `json:"exam_title,omitempty"`
	Score       float64    `json:"score"`
	Passed      bool       `json:"passed"`
	Late        bool       `json:"late"`
	IsPublished bool       `json:"is_published"`
	PublishedBy *uint      `json:"published_by,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewExamResultResponse converts a result model into a DTO.
func NewExamResultResponse(result models.ExamResult) ExamResultResponse {
	return ExamResultResponse{
		ID:          result.ID,
		AttemptID:   result.AttemptID,
		UserID:      result.UserID,
		ExamID:      result.ExamID,
		ExamTitle:   result.Exam.Title,
		Score:       result.Score,
		Passed:      result.Passed,
		Late:        result.Late,
		IsPublished: result.IsPublished,
		PublishedBy: result.PublishedBy,
		PublishedAt: result.PublishedAt,
		CreatedAt:   result.CreatedAt,
	}
}

// ExamResultListRequest filters result listings.
type ExamResultListRequest struct {
	Page      int
	PageSize  int
	ExamID    uint
	UserID    uint
	Published *bool
}

// ExamResultListResponse wraps paginated results.
type ExamResultListResponse struct {
	Items      []ExamResultResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
	CacheHit   bool                 `json:"cache_hit"`
}

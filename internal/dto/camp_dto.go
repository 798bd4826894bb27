package dto

import (
	"time"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// CampRequest creates or updates a camp.
type CampRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Location string `json:"location" validate:"omitempty,max=255"`
	StartsAt string `json:"starts_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndsAt   string `json:"ends_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	IsOpen   bool   `json:"is_open"`
}

// CampResponse serializes a camp.
type CampResponse struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	IsOpen   bool      `json:"is_open"`
}

// NewCampResponse converts a model into a DTO.
func NewCampResponse(camp models.Camp) CampResponse {
	return CampResponse{
		ID:       camp.ID,
		Name:     camp.Name,
		Location: camp.Location,
		StartsAt: camp.StartsAt,
		EndsAt:   camp.EndsAt,
		IsOpen:   camp.IsOpen,
	}
}

// CampRegistrationRequest registers the caller, or the user identified by Email when the caller may register others.
type CampRegistrationRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// CampRegistrationResponse serializes a registration.
type CampRegistrationResponse struct {
	ID           uint      `json:"id"`
	CampID       uint      `json:"camp_id"`
	UserID       uint      `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	UserEmail    string    `json:"user_email,omitempty"`
	RegisteredBy uint      `json:"registered_by"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewCampRegistrationResponse converts a model into a DTO.
func NewCampRegistrationResponse(reg models.CampRegistration) CampRegistrationResponse {
	return CampRegistrationResponse{
		ID:           reg.ID,
		CampID:       reg.CampID,
		UserID:       reg.UserID,
		UserName:     reg.User.Name,
		UserEmail:    reg.User.Email,
		RegisteredBy: reg.RegisteredBy,
		Source:       reg.Source,
		CreatedAt:    reg.CreatedAt,
	}
}

// BulkRowError describes why a spreadsheet row was not imported.
type BulkRowError struct {
	Row    int    `json:"row"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// BulkRegistrationResponse summarises a spreadsheet import.
type BulkRegistrationResponse struct {
	Inserted int            `json:"inserted"`
	Errors   []BulkRowError `json:"errors"`
}

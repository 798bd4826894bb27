package dto

import (
	"time"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// UserResponse serializes user data.
type UserResponse struct {
	ID            uint      `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	Phone         string    `json:"phone"`
	AssociationID *uint     `json:"association_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Code:          user.Code,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		Status:        user.Status,
		Phone:         user.Phone,
		AssociationID: user.AssociationID,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// ProfileUpdateRequest patches the caller's own profile.
type ProfileUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

// AdminUserListRequest defines filters for listing users.
type AdminUserListRequest struct {
	Page          int
	PageSize      int
	Search        string
	Role          string
	Status        string
	AssociationID uint
}

// AdminUserListResponse wraps a paginated user response.
type AdminUserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// RoleUpdateRequest changes a user's role.
type RoleUpdateRequest struct {
	Role string `json:"role" validate:"required,oneof=superadmin admin president ambassador member"`
}

// StatusUpdateRequest changes a user's status.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

// AssociationRequest creates or updates an association.
type AssociationRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=255"`
	Code   string `json:"code" validate:"required,alphanum,max=64"`
	Region string `json:"region" validate:"omitempty,max=128"`
}

// AssociationResponse serializes association data.
type AssociationResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Region      string    `json:"region"`
	PresidentID *uint     `json:"president_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAssociationResponse converts an association model into a DTO.
func NewAssociationResponse(model models.Association) AssociationResponse {
	return AssociationResponse{
		ID:          model.ID,
		Name:        model.Name,
		Code:        model.Code,
		Region:      model.Region,
		PresidentID: model.PresidentID,
		CreatedAt:   model.CreatedAt,
	}
}

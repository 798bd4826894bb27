package models

import (
	"time"

	"gorm.io/gorm"
)

// Portal roles carried in access token claims.
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RolePresident  = "president"
	RoleAmbassador = "ambassador"
	RoleMember     = "member"
)

// User account statuses.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User represents a registered portal account.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Code          string         `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Email         string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"size:255;not null" json:"-"`
	Role          string         `gorm:"size:32;index;not null" json:"role"`
	Status        string         `gorm:"size:32;index;not null" json:"status"`
	Phone         string         `gorm:"size:32" json:"phone"`
	AssociationID *uint          `gorm:"index" json:"association_id"`
	Association   *Association   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"association,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds an administrative role.
func (u User) IsAdmin() bool {
	return IsAdminRole(u.Role)
}

// IsAdminRole reports whether role grants access to admin-only routes.
func IsAdminRole(role string) bool {
	return role == RoleSuperadmin || role == RoleAdmin
}

// IsPrivilegedRole reports whether registering or logging in with role requires a passcode.
func IsPrivilegedRole(role string) bool {
	return role == RoleSuperadmin || role == RolePresident
}

// Association is a regional chapter. Only one president pointer exists per association.
type Association struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Code        string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Region      string    `gorm:"size:128" json:"region"`
	PresidentID *uint     `gorm:"index" json:"president_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RefreshToken stores the hash of an issued refresh token. A user's rows form its list of live tokens.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	TokenHash string    `gorm:"size:128;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Counter backs sequential code allocation.
type Counter struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null"`
}

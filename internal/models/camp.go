package models

import "time"

// Camp registration sources.
const (
	RegistrationSourceIndividual = "individual"
	RegistrationSourceBulk       = "bulk"
)

// Camp is an event members can register for.
type Camp struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Location  string    `gorm:"size:255" json:"location"`
	StartsAt  time.Time `gorm:"index" json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	IsOpen    bool      `gorm:"index;not null" json:"is_open"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CampRegistration links a user to a camp. A user registers at most once per camp.
type CampRegistration struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CampID       uint      `gorm:"uniqueIndex:idx_camp_user;not null" json:"camp_id"`
	UserID       uint      `gorm:"uniqueIndex:idx_camp_user;not null" json:"user_id"`
	RegisteredBy uint      `gorm:"not null" json:"registered_by"`
	Source       string    `gorm:"size:32;not null" json:"source"`
	User         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

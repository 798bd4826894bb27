package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog captures privileged actions. Rows are append-only.
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Action     string            `gorm:"size:64;index;not null" json:"action"`
	ActorID    uint              `gorm:"index;not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	TargetType string            `gorm:"size:64;index;not null" json:"target_type"`
	TargetID   *uint             `json:"target_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

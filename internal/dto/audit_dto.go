package dto

import (
	"time"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// AuditLogListRequest defines filters for retrieving audit logs.
type AuditLogListRequest struct {
	Page       int
	PageSize   int
	ActorID    uint
	Action     string
	TargetType string
}

// AuditLogResponse serializes audit log entries.
type AuditLogResponse struct {
	ID         uint                   `json:"id"`
	Action     string                 `json:"action"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	TargetType string                 `json:"target_type"`
	TargetID   *uint                  `json:"target_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AuditLogListResponse wraps paginated audit logs.
type AuditLogListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewAuditLogResponse converts a model into an audit DTO.
func NewAuditLogResponse(entry models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         entry.ID,
		Action:     entry.Action,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Metadata:   metadataFromJSON(entry.Metadata),
		CreatedAt:  entry.CreatedAt,
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/observability"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

const auditBufferSize = 32

// EventPublisher forwards serialized events to a message broker. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// AuditEntry captures the details required to persist an audit entry.
type AuditEntry struct {
	Actor      Actor
	Action     string
	TargetType string
	TargetID   *uint
	Metadata   map[string]interface{}
}

// AuditRecorder records privileged actions.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) (dto.AuditLogResponse, error)
}

// AuditService exposes the audit trail: recording, listing and live streaming.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error)
	Subscribe() (<-chan dto.AuditLogResponse, func())
}

type auditService struct {
	repo      repository.AuditLogRepository
	publisher EventPublisher
	subject   string
	logger    zerolog.Logger
	broker    *auditBroker
}

type auditBroker struct {
	mu          sync.RWMutex
	subscribers map[chan dto.AuditLogResponse]struct{}
}

type auditEvent struct {
	Entry  dto.AuditLogResponse `json:"entry"`
	SentAt time.Time            `json:"sent_at"`
}

// NewAuditService constructs the audit service. publisher may be nil when no broker is configured.
func NewAuditService(repo repository.AuditLogRepository, publisher EventPublisher, channelBase string, logger zerolog.Logger) AuditService {
	subject := ""
	if channelBase != "" {
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".audit"
	}
	return &auditService{
		repo:      repo,
		publisher: publisher,
		subject:   subject,
		logger:    logger.With().Str("component", "audit_service").Logger(),
		broker:    &auditBroker{subscribers: make(map[chan dto.AuditLogResponse]struct{})},
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) (dto.AuditLogResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.AuditLogResponse{}, fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.TargetType) == "" {
		return dto.AuditLogResponse{}, fmt.Errorf("target type is required")
	}

	model := models.AuditLog{
		Action:     strings.ToLower(strings.TrimSpace(entry.Action)),
		ActorID:    entry.Actor.ID,
		ActorRole:  normalizeRole(entry.Actor.Role),
		TargetType: strings.ToLower(strings.TrimSpace(entry.TargetType)),
		TargetID:   entry.TargetID,
		Metadata:   maskMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", model.Action).Msg("failed to persist audit log")
		return dto.AuditLogResponse{}, err
	}

	response := dto.NewAuditLogResponse(model)
	observability.AuditEvents().WithLabelValues(response.Action).Inc()
	s.broker.broadcast(response)
	if err := s.publish(response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish audit event to broker")
	}

	return response, nil
}

func (s *auditService) List(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error) {
	filter := repository.AuditLogFilter{
		Page:       normalizePage(req.Page),
		PageSize:   clampPageSize(req.PageSize),
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		TargetType: strings.ToLower(strings.TrimSpace(req.TargetType)),
	}
	if req.ActorID > 0 {
		filter.ActorID = uintPtr(req.ActorID)
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditLogListResponse{}, err
	}

	responses := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewAuditLogResponse(entry))
	}

	return dto.AuditLogListResponse{Items: responses, Pagination: buildPagination(filter.Page, filter.PageSize, total)}, nil
}

func (s *auditService) Subscribe() (<-chan dto.AuditLogResponse, func()) {
	channel := make(chan dto.AuditLogResponse, auditBufferSize)
	s.broker.subscribe(channel)

	var once sync.Once
	cleanup := func() {
		once.Do(func() { s.broker.unsubscribe(channel) })
	}
	return channel, cleanup
}

func (s *auditService) publish(entry dto.AuditLogResponse) error {
	if s.publisher == nil || s.subject == "" {
		return nil
	}
	payload, err := json.Marshal(auditEvent{Entry: entry, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.publisher.Publish(s.subject, payload)
}

func (b *auditBroker) subscribe(ch chan dto.AuditLogResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = struct{}{}
}

func (b *auditBroker) unsubscribe(ch chan dto.AuditLogResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// broadcast drops the entry for subscribers whose buffer is full.
func (b *auditBroker) broadcast(entry dto.AuditLogResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- entry:
		default:
		}
	}
}

var sensitiveMetadataKeys = []string{"email", "token", "password", "passcode"}

func maskMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	masked := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		sensitive := false
		for _, marker := range sensitiveMetadataKeys {
			if strings.Contains(lower, marker) {
				sensitive = true
				break
			}
		}
		if sensitive {
			masked[key] = "***"
			continue
		}
		masked[key] = value
	}
	return masked
}

// recordAudit persists an audit entry and only logs failures, so the audited action itself still succeeds.
func recordAudit(ctx context.Context, recorder AuditRecorder, logger zerolog.Logger, entry AuditEntry) {
	if recorder == nil {
		return
	}
	if _, err := recorder.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to record audit entry")
	}
}

package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// AssociationService manages regional chapters.
type AssociationService interface {
	List(ctx context.Context) ([]dto.AssociationResponse, error)
	Create(ctx context.Context, req dto.AssociationRequest, actor Actor) (dto.AssociationResponse, error)
	Update(ctx context.Context, id uint, req dto.AssociationRequest, actor Actor) (dto.AssociationResponse, error)
}

type associationService struct {
	repo      repository.AssociationRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewAssociationService constructs the association service.
func NewAssociationService(repo repository.AssociationRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) AssociationService {
	return &associationService{
		repo:      repo,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "association_service").Logger(),
	}
}

func (s *associationService) List(ctx context.Context) ([]dto.AssociationResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.AssociationResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewAssociationResponse(item))
	}
	return responses, nil
}

func (s *associationService) Create(ctx context.Context, req dto.AssociationRequest, actor Actor) (dto.AssociationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssociationResponse{}, err
	}

	model := models.Association{
		Name:   strings.TrimSpace(req.Name),
		Code:   strings.ToUpper(strings.TrimSpace(req.Code)),
		Region: strings.TrimSpace(req.Region),
	}
	if err := s.repo.Create(ctx, &model); err != nil {
		return dto.AssociationResponse{}, translateStoreError(err, "association")
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{Actor: actor, Action: "association.created", TargetType: "association", TargetID: uintPtr(model.ID)})
	return dto.NewAssociationResponse(model), nil
}

func (s *associationService) Update(ctx context.Context, id uint, req dto.AssociationRequest, actor Actor) (dto.AssociationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssociationResponse{}, err
	}

	model, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AssociationResponse{}, translateStoreError(err, "association")
	}
	model.Name = strings.TrimSpace(req.Name)
	model.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	model.Region = strings.TrimSpace(req.Region)

	if err := s.repo.Update(ctx, &model); err != nil {
		return dto.AssociationResponse{}, translateStoreError(err, "association")
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{Actor: actor, Action: "association.updated", TargetType: "association", TargetID: uintPtr(id)})
	return dto.NewAssociationResponse(model), nil
}

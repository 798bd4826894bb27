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

// UserService manages profiles and administrative account changes.
type UserService interface {
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error)
	List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	ChangeRole(ctx context.Context, id uint, req dto.RoleUpdateRequest, actor Actor) (dto.UserResponse, error)
	ChangeStatus(ctx context.Context, id uint, req dto.StatusUpdateRequest, actor Actor) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo repository.UserRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	return s.Get(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if len(updates) == 0 {
		return s.Get(ctx, userID)
	}

	user, err := s.repo.Update(ctx, userID, updates)
	if err != nil {
		return dto.UserResponse{}, translateStoreError(err, "user")
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	filter := repository.UserFilter{
		Search:   strings.TrimSpace(req.Search),
		Role:     strings.ToLower(strings.TrimSpace(req.Role)),
		Status:   strings.ToLower(strings.TrimSpace(req.Status)),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}
	if req.AssociationID > 0 {
		filter.AssociationID = uintPtr(req.AssociationID)
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return dto.AdminUserListResponse{Items: items, Pagination: buildPagination(filter.Page, filter.PageSize, total)}, nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, translateStoreError(err, "user")
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) ChangeRole(ctx context.Context, id uint, req dto.RoleUpdateRequest, actor Actor) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, translateStoreError(err, "user")
	}
	role := strings.ToLower(req.Role)
	if role == models.RoleSuperadmin && actor.Role != models.RoleSuperadmin {
		return dto.UserResponse{}, forbidden("only a superadmin can grant the superadmin role")
	}
	if current.Role == models.RoleSuperadmin && actor.Role != models.RoleSuperadmin {
		return dto.UserResponse{}, forbidden("only a superadmin can change a superadmin")
	}

	user, err := s.repo.Update(ctx, id, map[string]interface{}{"role": role})
	if err != nil {
		return dto.UserResponse{}, translateStoreError(err, "user")
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "user.role_changed",
		TargetType: "user",
		TargetID:   uintPtr(id),
		Metadata:   map[string]interface{}{"from": current.Role, "to": role},
	})
	return dto.NewUserResponse(user), nil
}

func (s *userService) ChangeStatus(ctx context.Context, id uint, req dto.StatusUpdateRequest, actor Actor) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}
	if id == actor.ID {
		return dto.UserResponse{}, badRequest("cannot change your own status")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, translateStoreError(err, "user")
	}

	user, err := s.repo.Update(ctx, id, map[string]interface{}{"status": strings.ToLower(req.Status)})
	if err != nil {
		return dto.UserResponse{}, translateStoreError(err, "user")
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "user.status_changed",
		TargetType: "user",
		TargetID:   uintPtr(id),
		Metadata:   map[string]interface{}{"from": current.Status, "to": user.Status},
	})
	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor Actor) error {
	if id == actor.ID {
		return badRequest("cannot delete your own account")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return translateStoreError(err, "user")
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "user.deleted",
		TargetType: "user",
		TargetID:   uintPtr(id),
	})
	return nil
}

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

// Token type claims.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AuthConfig groups the secrets and lifetimes used to issue tokens.
type AuthConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	SuperadminPasscode string
	PresidentPasscode  string
	UserCodePrefix     string
	BcryptCost         int
}

// AuthService handles registration, login and the refresh token lifecycle.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	users        repository.UserRepository
	associations repository.AssociationRepository
	tokens       repository.RefreshTokenRepository
	audit        AuditRecorder
	validator    *validator.Validate
	cfg          AuthConfig
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, associations repository.AssociationRepository, tokens repository.RefreshTokenRepository, audit AuditRecorder, validate *validator.Validate, cfg AuthConfig, logger zerolog.Logger) AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.UserCodePrefix == "" {
		cfg.UserCodePrefix = "MBR"
	}
	return &authService{
		users:        users,
		associations: associations,
		tokens:       tokens,
		audit:        audit,
		validator:    validate,
		cfg:          cfg,
		logger:       logger.With().Str("component", "auth_service").Logger(),
		now:          time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = models.RoleMember
	}
	switch role {
	case models.RoleSuperadmin, models.RolePresident, models.RoleMember:
	default:
		return dto.AuthResponse{}, forbidden("role %s cannot be self-registered", role)
	}
	if err := s.checkPasscode(role, req.Passcode); err != nil {
		return dto.AuthResponse{}, err
	}

	email := normalizeEmail(req.Email)
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if taken {
		return dto.AuthResponse{}, conflict("email already registered")
	}

	opts := repository.RegisterOptions{CodePrefix: s.cfg.UserCodePrefix}
	var previousPresident *uint
	if req.AssociationID != nil {
		association, err := s.associations.GetByID(ctx, *req.AssociationID)
		if err != nil {
			return dto.AuthResponse{}, translateStoreError(err, "association")
		}
		if role == models.RolePresident {
			opts.PresidentOf = &association.ID
			previousPresident = association.PresidentID
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		Status:        models.UserStatusActive,
		Phone:         strings.TrimSpace(req.Phone),
		AssociationID: req.AssociationID,
	}
	if err := s.users.Register(ctx, &user, opts); err != nil {
		return dto.AuthResponse{}, translateStoreError(err, "user")
	}

	if opts.PresidentOf != nil {
		metadata := map[string]interface{}{"president_id": user.ID}
		if previousPresident != nil {
			metadata["previous_president_id"] = *previousPresident
		}
		recordAudit(ctx, s.audit, s.logger, AuditEntry{
			Actor:      Actor{ID: user.ID, Role: user.Role},
			Action:     "association.president_assigned",
			TargetType: "association",
			TargetID:   opts.PresidentOf,
			Metadata:   metadata,
		})
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Str("code", user.Code).Msg("user registered")
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, unauthorized("invalid credentials")
		}
		return dto.AuthResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, unauthorized("invalid credentials")
	}
	if err := s.checkPasscode(user.Role, req.Passcode); err != nil {
		return dto.AuthResponse{}, err
	}
	if user.Status == models.UserStatusSuspended {
		return dto.AuthResponse{}, forbidden("account suspended")
	}

	return s.issue(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (dto.AuthResponse, error) {
	userID, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	present, err := s.tokens.Consume(ctx, hashToken(refreshToken))
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if !present {
		return dto.AuthResponse{}, unauthorized("refresh token revoked")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, unauthorized("account no longer exists")
		}
		return dto.AuthResponse{}, err
	}
	if user.Status == models.UserStatusSuspended {
		return dto.AuthResponse{}, forbidden("account suspended")
	}

	return s.issue(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.parseRefreshToken(refreshToken); err != nil {
		return err
	}
	if _, err := s.tokens.Consume(ctx, hashToken(refreshToken)); err != nil {
		return err
	}
	return nil
}

func (s *authService) checkPasscode(role, passcode string) error {
	var expected string
	switch role {
	case models.RoleSuperadmin:
		expected = s.cfg.SuperadminPasscode
	case models.RolePresident:
		expected = s.cfg.PresidentPasscode
	default:
		return nil
	}
	expected = strings.TrimSpace(expected)
	if expected == "" || !subtleConstantTimeCompare(expected, strings.TrimSpace(passcode)) {
		return forbidden("invalid passcode for role %s", role)
	}
	return nil
}

func (s *authService) issue(ctx context.Context, user models.User) (dto.AuthResponse, error) {
	now := s.now()

	if pruned, err := s.tokens.DeleteExpired(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to prune expired refresh tokens")
	} else if pruned > 0 {
		s.logger.Debug().Int64("pruned", pruned).Uint("user_id", user.ID).Msg("expired refresh tokens pruned")
	}

	subject := strconv.FormatUint(uint64(user.ID), 10)
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": user.Role,
		"typ":  TokenTypeAccess,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.AccessTTL).Unix(),
	}).SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshExpiry := now.Add(s.cfg.RefreshTTL)
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"jti": uuid.NewString(),
		"typ": TokenTypeRefresh,
		"iat": now.Unix(),
		"exp": refreshExpiry.Unix(),
	}).SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("sign refresh token: %w", err)
	}

	record := models.RefreshToken{UserID: user.ID, TokenHash: hashToken(refresh), ExpiresAt: refreshExpiry}
	if err := s.tokens.Create(ctx, &record); err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{
		User: dto.NewUserResponse(user),
		Tokens: dto.TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    "Bearer",
			ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
		},
	}, nil
}

func (s *authService) parseRefreshToken(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, unauthorized("refresh token required")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(s.cfg.RefreshSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return 0, unauthorized("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != TokenTypeRefresh {
		return 0, unauthorized("invalid refresh token")
	}
	subject, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || id == 0 {
		return 0, unauthorized("invalid refresh token")
	}
	return uint(id), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

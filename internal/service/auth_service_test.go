package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

func setupAuthService(t *testing.T) (*gorm.DB, AuthService, *stubAuditRecorder) {
	t.Helper()

	db := setupServiceDB(t)
	audit := &stubAuditRecorder{}
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewAssociationRepository(db),
		repository.NewRefreshTokenRepository(db),
		audit,
		testValidator(),
		AuthConfig{
			AccessSecret:       "access-secret",
			RefreshSecret:      "refresh-secret",
			AccessTTL:          time.Minute,
			RefreshTTL:         time.Hour,
			SuperadminPasscode: "root-pass",
			PresidentPasscode:  "chapter-pass",
			BcryptCost:         bcrypt.MinCost,
		},
		testLogger(),
	)
	return db, svc, audit
}

func TestAuthRegisterAssignsSequentialCodes(t *testing.T) {
	_, svc, _ := setupAuthService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, dto.RegisterRequest{Name: "Ana", Email: "Ana@Example.com", Password: "password1"})
	require.NoError(t, err)
	second, err := svc.Register(ctx, dto.RegisterRequest{Name: "Ben", Email: "ben@example.com", Password: "password1"})
	require.NoError(t, err)

	require.Equal(t, "MBR000001", first.User.Code)
	require.Equal(t, "MBR000002", second.User.Code)
	require.Equal(t, "ana@example.com", first.User.Email)
	require.Equal(t, models.RoleMember, first.User.Role)
	require.NotEmpty(t, first.Tokens.AccessToken)

	_, err = svc.Register(ctx, dto.RegisterRequest{Name: "Dup", Email: "ben@example.com", Password: "password1"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestAuthAccessTokenCarriesRoleClaim(t *testing.T) {
	_, svc, _ := setupAuthService(t)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "password1"})
	require.NoError(t, err)

	token, err := jwt.Parse(resp.Tokens.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("access-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "member", claims["role"])
	require.Equal(t, "access", claims["typ"])
	require.NotEmpty(t, claims["sub"])
}

func TestAuthRegisterRoleGate(t *testing.T) {
	_, svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Name: "Root", Email: "root@example.com", Password: "password1", Role: "superadmin", Passcode: "wrong"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Register(ctx, dto.RegisterRequest{Name: "Adm", Email: "adm@example.com", Password: "password1", Role: "admin"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Register(ctx, dto.RegisterRequest{Name: "Amb", Email: "amb@example.com", Password: "password1", Role: "ambassador"})
	require.ErrorIs(t, err, ErrForbidden)

	resp, err := svc.Register(ctx, dto.RegisterRequest{Name: "Root", Email: "root@example.com", Password: "password1", Role: "superadmin", Passcode: "root-pass"})
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperadmin, resp.User.Role)

	_, err = svc.Register(ctx, dto.RegisterRequest{Name: "X", Email: "not-an-email", Password: "password1"})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))
}

func TestAuthSecondPresidentOverwritesAssociation(t *testing.T) {
	db, svc, audit := setupAuthService(t)
	ctx := context.Background()

	association := models.Association{Name: "North", Code: "NORTH"}
	require.NoError(t, db.Create(&association).Error)

	first, err := svc.Register(ctx, dto.RegisterRequest{Name: "First", Email: "p1@example.com", Password: "password1", Role: "president", Passcode: "chapter-pass", AssociationID: &association.ID})
	require.NoError(t, err)
	second, err := svc.Register(ctx, dto.RegisterRequest{Name: "Second", Email: "p2@example.com", Password: "password1", Role: "president", Passcode: "chapter-pass", AssociationID: &association.ID})
	require.NoError(t, err)

	var stored models.Association
	require.NoError(t, db.First(&stored, association.ID).Error)
	require.NotNil(t, stored.PresidentID)
	require.Equal(t, second.User.ID, *stored.PresidentID)

	require.Equal(t, []string{"association.president_assigned", "association.president_assigned"}, audit.actions())
	require.Equal(t, first.User.ID, audit.entries[1].Metadata["previous_president_id"])

	missing := uint(999)
	_, err = svc.Register(ctx, dto.RegisterRequest{Name: "Third", Email: "p3@example.com", Password: "password1", Role: "president", Passcode: "chapter-pass", AssociationID: &missing})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthLoginDistinguishesCredentialsAndPasscode(t *testing.T) {
	db, svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Name: "Root", Email: "root@example.com", Password: "password1", Role: "superadmin", Passcode: "root-pass"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "root@example.com", Password: "wrong-password", Passcode: "root-pass"})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "root@example.com", Password: "password1", Passcode: "nope"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "password1"})
	require.ErrorIs(t, err, ErrUnauthorized)

	resp, err := svc.Login(ctx, dto.LoginRequest{Email: "ROOT@example.com", Password: "password1", Passcode: "root-pass"})
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperadmin, resp.User.Role)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", resp.User.ID).Update("status", models.UserStatusSuspended).Error)
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "root@example.com", Password: "password1", Passcode: "root-pass"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAuthRefreshRotatesAndRejectsReuse(t *testing.T) {
	_, svc, _ := setupAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "password1"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, registered.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, registered.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	_, err = svc.Refresh(ctx, registered.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Refresh(ctx, rotated.Tokens.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, svc.Logout(ctx, rotated.Tokens.RefreshToken))
	_, err = svc.Refresh(ctx, rotated.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthIssuePrunesExpiredRefreshTokens(t *testing.T) {
	db, svc, _ := setupAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "password1"})
	require.NoError(t, err)

	stale := models.RefreshToken{UserID: registered.User.ID, TokenHash: "stale", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(&stale).Error)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "password1"})
	require.NoError(t, err)

	var remaining int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("user_id = ?", registered.User.ID).Count(&remaining).Error)
	require.Equal(t, int64(2), remaining)
	require.ErrorIs(t, db.Where("token_hash = ?", "stale").First(&models.RefreshToken{}).Error, gorm.ErrRecordNotFound)
}

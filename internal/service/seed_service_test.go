package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

func TestSeedBootstrapIsIdempotent(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSeedService(repository.NewUserRepository(db), repository.NewHomepageRepository(db), SeedConfig{
		SuperadminEmail:    "Root@Example.com",
		SuperadminPassword: "change-me-now",
		BcryptCost:         bcrypt.MinCost,
	}, testLogger())
	ctx := context.Background()

	report, err := svc.Bootstrap(ctx)
	require.NoError(t, err)
	require.True(t, report.SuperadminCreated)
	require.EqualValues(t, len(DefaultHomepageSections()), report.HomepageSections)

	again, err := svc.Bootstrap(ctx)
	require.NoError(t, err)
	require.False(t, again.SuperadminCreated)
	require.Zero(t, again.HomepageSections)

	user, err := repository.NewUserRepository(db).GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperadmin, user.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("change-me-now")))
}

func TestSeedBootstrapSkipsSuperadminWithoutCredentials(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSeedService(repository.NewUserRepository(db), repository.NewHomepageRepository(db), SeedConfig{}, testLogger())

	report, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	require.False(t, report.SuperadminCreated)
	require.NotZero(t, report.HomepageSections)
}

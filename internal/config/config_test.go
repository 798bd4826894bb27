package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecrets(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET", "")
	t.Setenv("PORTAL_JWT_REFRESH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET", "access")
	t.Setenv("PORTAL_JWT_REFRESH_SECRET", "refresh")
	t.Setenv("PORTAL_USER_CODE_PREFIX", "asc")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, "local", cfg.StorageDriver)
	require.Equal(t, "ASC", cfg.UserCodePrefix)
	require.Empty(t, cfg.ProxyHeader)
}

func TestLoadRejectsUnknownStorageDriver(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET", "access")
	t.Setenv("PORTAL_JWT_REFRESH_SECRET", "refresh")
	t.Setenv("PORTAL_STORAGE_DRIVER", "s3")

	_, err := Load()
	require.Error(t, err)
}

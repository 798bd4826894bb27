package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/middleware"
)

const testSecret = "access-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func jwtApp() *fiber.App {
	app := fiber.New()
	app.Get("/", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id"), "role": c.Locals("user_role")})
	})
	return app
}

func requestWithToken(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedAcceptsAccessToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "42",
		"role": "President",
		"typ":  "access",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})

	resp := requestWithToken(t, jwtApp(), token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsInvalidTokens(t *testing.T) {
	cases := map[string]string{
		"missing": "",
		"refresh": signToken(t, testSecret, jwt.MapClaims{"sub": "42", "typ": "refresh", "exp": time.Now().Add(time.Minute).Unix()}),
		"expired": signToken(t, testSecret, jwt.MapClaims{"sub": "42", "typ": "access", "exp": time.Now().Add(-time.Minute).Unix()}),
		"foreign": signToken(t, "other-secret", jwt.MapClaims{"sub": "42", "typ": "access"}),
		"subject": signToken(t, testSecret, jwt.MapClaims{"role": "admin", "typ": "access"}),
	}

	for name, token := range cases {
		resp := requestWithToken(t, jwtApp(), token)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestJWTProtectedQueryTokenOnlyForUpgrades(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "7",
		"typ": "access",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	app := jwtApp()

	plain := httptest.NewRequest(http.MethodGet, "/?access_token="+token, nil)
	resp, err := app.Test(plain, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	upgrade := httptest.NewRequest(http.MethodGet, "/?access_token="+token, nil)
	upgrade.Header.Set("Connection", "Upgrade")
	upgrade.Header.Set("Upgrade", "websocket")
	resp, err = app.Test(upgrade, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/middleware"
	"github.com/noah-isme/membership-portal-api/internal/observability"
)

func TestObservabilityLabelsRequestsByScope(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Observability(zerolog.Nop()))
	app.Get("/metrics", observability.MetricsHandler())
	app.Get("/api/v1/announcements", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/v1/dashboard", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(5))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/v1/admin/payments/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusConflict)
	})

	for _, path := range []string{"/api/v1/announcements", "/api/v1/dashboard", "/api/v1/admin/payments/9"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	exposition := string(body)

	require.Contains(t, exposition, `portal_api_requests_total{method="GET",route="/api/v1/announcements",scope="public",status="200"}`)
	require.Contains(t, exposition, `portal_api_requests_total{method="GET",route="/api/v1/dashboard",scope="member",status="200"}`)
	require.Contains(t, exposition, `portal_api_errors_total{method="GET",route="/api/v1/admin/payments/:id",scope="admin",status="409"}`)
	require.NotContains(t, exposition, `route="/metrics"`)
}

package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/config"
	"github.com/noah-isme/membership-portal-api/internal/handler"
)

func healthApp(checks ...handler.DependencyCheck) *fiber.App {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "portal", AppEnv: "test"}, checks...))
	return app
}

func up(context.Context) error { return nil }

func down(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsDependencyState(t *testing.T) {
	cases := []struct {
		name   string
		checks []handler.DependencyCheck
		status int
		state  string
	}{
		{
			name:   "all up",
			checks: []handler.DependencyCheck{{Name: "database", Required: true, Check: up}, {Name: "redis", Check: up}},
			status: fiber.StatusOK,
			state:  handler.HealthStatusOK,
		},
		{
			name:   "optional cache down",
			checks: []handler.DependencyCheck{{Name: "database", Required: true, Check: up}, {Name: "redis", Check: down}},
			status: fiber.StatusOK,
			state:  handler.HealthStatusDegraded,
		},
		{
			name:   "database down",
			checks: []handler.DependencyCheck{{Name: "database", Required: true, Check: down}, {Name: "redis", Check: up}},
			status: fiber.StatusServiceUnavailable,
			state:  handler.HealthStatusUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := healthApp(tc.checks...).Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			var payload struct {
				Data    *handler.HealthResponse `json:"data"`
				Details *handler.HealthResponse `json:"details"`
			}
			decodeResponse(t, resp, &payload)
			report := payload.Data
			if report == nil {
				report = payload.Details
			}
			require.NotNil(t, report)
			require.Equal(t, tc.state, report.Status)
			require.Len(t, report.Checks, len(tc.checks))
		})
	}
}

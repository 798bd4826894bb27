package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/middleware"
)

func TestCorrelationIDReusesOrReplacesIncomingValue(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(middleware.CorrelationIDFromContext(c.UserContext()))
	})

	cases := map[string]struct {
		header string
		value  string
		keep   bool
	}{
		"correlation header kept": {header: middleware.HeaderCorrelationID, value: "req-42.a", keep: true},
		"request id fallback":     {header: fiber.HeaderXRequestID, value: "abc_123", keep: true},
		"injection replaced":      {header: middleware.HeaderCorrelationID, value: "evil\" level=error", keep: false},
		"oversized replaced":      {header: middleware.HeaderCorrelationID, value: strings.Repeat("a", 200), keep: false},
		"missing generated":       {},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			echoed := resp.Header.Get(middleware.HeaderCorrelationID)
			if tc.keep {
				require.Equal(t, tc.value, echoed)
			} else {
				_, parseErr := uuid.Parse(echoed)
				require.NoError(t, parseErr)
			}

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, echoed, string(body))
		})
	}
}

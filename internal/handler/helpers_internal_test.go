package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/service"
)

func TestRespondErrorMapsKinds(t *testing.T) {
	type sample struct {
		Email string `validate:"required,email"`
	}
	validationErr := validator.New().Struct(sample{Email: "nope"})

	cases := map[string]struct {
		err    error
		status int
	}{
		"validation":   {validationErr, fiber.StatusBadRequest},
		"bad request":  {&service.Error{Kind: service.ErrBadRequest, Msg: "amount must be positive"}, fiber.StatusBadRequest},
		"missing file": {service.ErrUploadMissing, fiber.StatusBadRequest},
		"too large":    {fmt.Errorf("receipt: %w", service.ErrUploadTooLarge), fiber.StatusRequestEntityTooLarge},
		"bad type":     {service.ErrUploadTypeNotAllowed, fiber.StatusUnsupportedMediaType},
		"not found":    {&service.Error{Kind: service.ErrNotFound, Msg: "camp not found"}, fiber.StatusNotFound},
		"conflict":     {&service.Error{Kind: service.ErrConflict}, fiber.StatusConflict},
		"forbidden":    {&service.Error{Kind: service.ErrForbidden}, fiber.StatusForbidden},
		"unauthorized": {&service.Error{Kind: service.ErrUnauthorized}, fiber.StatusUnauthorized},
		"unknown":      {fmt.Errorf("connection reset"), fiber.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, zerolog.New(io.Discard), tc.err, "request failed")
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRespondErrorHidesInternalMessages(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, zerolog.New(io.Discard), fmt.Errorf("pq: password authentication failed"), "failed to list users")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "failed to list users")
	require.NotContains(t, string(body), "password")
}

func TestParsePaginationAcceptsLegacyAlias(t *testing.T) {
	cases := map[string][2]int{
		"/?page=2&pageSize=15":       {2, 15},
		"/?page=3&page_size=40":      {3, 40},
		"/?pageSize=10&page_size=99": {0, 10},
		"/":                          {0, 0},
	}

	for target, expected := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error {
			page, size, err := parsePagination(c)
			require.NoError(t, err)
			require.Equal(t, expected[0], page)
			require.Equal(t, expected[1], size)
			return c.SendStatus(fiber.StatusNoContent)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode, target)
	}
}

func TestParsePaginationRejectsGarbage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if _, _, err := parsePagination(c); err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?page_size=many", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

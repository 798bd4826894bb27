package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/utils"
)

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
	Details map[string]interface{} `json:"details"`
}

func TestResponseEnvelopes(t *testing.T) {
	cases := []struct {
		name    string
		send    func(c *fiber.Ctx) error
		status  int
		success bool
		message string
		check   func(t *testing.T, payload envelope)
	}{
		{
			name: "ok carries pagination meta",
			send: func(c *fiber.Ctx) error {
				return utils.OK(c, fiber.Map{"code": "MBR000001"}, "", fiber.Map{"pagination": fiber.Map{"page": 1}})
			},
			status:  fiber.StatusOK,
			success: true,
			message: "success",
			check: func(t *testing.T, payload envelope) {
				require.Equal(t, "MBR000001", payload.Data["code"])
				require.Contains(t, payload.Meta, "pagination")
			},
		},
		{
			name: "created status",
			send: func(c *fiber.Ctx) error {
				return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "payment submitted", fiber.Map{"status": "pending"})
			},
			status:  fiber.StatusCreated,
			success: true,
			message: "payment submitted",
			check: func(t *testing.T, payload envelope) {
				require.Equal(t, "pending", payload.Data["status"])
				require.Nil(t, payload.Meta)
			},
		},
		{
			name: "zero status defaults to 200",
			send: func(c *fiber.Ctx) error {
				return utils.SendSuccessWithStatus(c, 0, "", nil)
			},
			status:  fiber.StatusOK,
			success: true,
			message: "success",
		},
		{
			name: "validation details",
			send: func(c *fiber.Ctx) error {
				return utils.Fail(c, fiber.StatusBadRequest, "validation failed", map[string]string{"AssociationID": "required"})
			},
			status:  fiber.StatusBadRequest,
			message: "validation failed",
			check: func(t *testing.T, payload envelope) {
				require.Equal(t, "required", payload.Details["AssociationID"])
				require.Nil(t, payload.Data)
			},
		},
		{
			name: "plain error",
			send: func(c *fiber.Ctx) error {
				return utils.SendError(c, fiber.StatusConflict, "payment has already been verified")
			},
			status:  fiber.StatusConflict,
			message: "payment has already been verified",
			check: func(t *testing.T, payload envelope) {
				require.Nil(t, payload.Details)
			},
		},
		{
			name: "empty error message",
			send: func(c *fiber.Ctx) error {
				return utils.SendError(c, fiber.StatusInternalServerError, "")
			},
			status:  fiber.StatusInternalServerError,
			message: "error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", tc.send)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			var payload envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			require.NoError(t, resp.Body.Close())

			require.Equal(t, tc.success, payload.Success)
			require.Equal(t, tc.message, payload.Message)
			if tc.check != nil {
				tc.check(t, payload)
			}
		})
	}
}

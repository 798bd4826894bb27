package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/membership-portal-api/internal/config"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

const dependencyCheckTimeout = 2 * time.Second

// Health statuses.
const (
	HealthStatusOK          = "ok"
	HealthStatusDegraded    = "degraded"
	HealthStatusUnavailable = "unavailable"
)

// DependencyCheck checks one backing dependency. A failing required check makes the service unavailable;
// a failing optional one only degrades it.
type DependencyCheck struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns a handler that reports the service and the state of its dependencies.
func HealthCheck(cfg config.Config, checks ...DependencyCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      HealthStatusOK,
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		if len(checks) > 0 {
			payload.Checks = make(map[string]string, len(checks))
		}
		for _, dep := range checks {
			ctx, cancel := context.WithTimeout(c.UserContext(), dependencyCheckTimeout)
			err := dep.Check(ctx)
			cancel()

			if err == nil {
				payload.Checks[dep.Name] = "up"
				continue
			}
			payload.Checks[dep.Name] = "down: " + err.Error()
			switch {
			case dep.Required:
				payload.Status = HealthStatusUnavailable
			case payload.Status == HealthStatusOK:
				payload.Status = HealthStatusDegraded
			}
		}

		if payload.Status == HealthStatusUnavailable {
			return utils.Fail(c, fiber.StatusServiceUnavailable, "service unavailable", payload)
		}
		return utils.SendSuccess(c, "service "+payload.Status, payload)
	}
}

package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/utils"
)

// RequireRole admits callers whose role claim is one of roles. A request without a role claim was never
// authenticated and gets 401; any other role gets 403.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := normalizeRole(role)
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRole(c.Locals("user_role"))
		if role == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireAdmin admits superadmins and admins.
func RequireAdmin() fiber.Handler {
	return RequireRole(models.RoleSuperadmin, models.RoleAdmin)
}

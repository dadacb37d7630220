package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/student-affairs/servicedesk-api/internal/models"
	"github.com/student-affairs/servicedesk-api/internal/utils"
)

// RoleResolver derives the role for an authenticated user. Implementations
// repair a missing profile with the Student default instead of failing.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID uint) (models.Role, error)
}

// ResolveRole loads the principal's role from storage on every request and
// binds it to the context. Roles are never trusted from the token, so role
// changes apply without reissuing credentials.
func ResolveRole(resolver RoleResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok || userID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		role, err := resolver.ResolveRole(c.UserContext(), userID)
		if err != nil {
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve role")
		}

		c.Locals("user_role", role)
		return c.Next()
	}
}

// RequireRole ensures the resolved role is one of the allowed set.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(models.Role)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if _, permitted := allowed[role]; !permitted {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireStaff admits any valid role other than Student.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(models.Role)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if !role.IsStaff() {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

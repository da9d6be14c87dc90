package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/police-dashboard/internal/domain"
	apperrors "github.com/spec-kit/police-dashboard/pkg/util"
)

// RequireRole ensures the authenticated account holds one of the allowed
// roles. An empty allowed set admits any authenticated caller.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		account, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[account.Role]; !exists {
			return apperrors.NewForbidden("not enough permissions")
		}
		return c.Next()
	}
}

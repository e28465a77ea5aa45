package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dorjizangpo/e-learning-platform/internal/model"
)

// RequireRole enforces that the authenticated user has one of the given
// roles. It assumes ResolveSession already ran; a request with no session
// or a role outside the allowed set is rejected with 403. Ownership checks
// are a handler-level refinement on top of this gate, not part of it.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := SessionRole(c)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

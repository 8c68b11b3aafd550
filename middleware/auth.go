// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the caller address and roles set by the
// Gateway. X-User-ID carries the on-platform account address; mutation routes
// are grouped under it so every write has a caller.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := c.Get("X-User-ID")
		rolesStr := c.Get("X-User-Roles")

		if caller == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		// Attach to ctx for handlers
		c.Locals("user_id", caller)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}

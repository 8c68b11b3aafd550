// middleware/sse_auth.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware validates the `token` query param for event-stream
// routes. EventSource clients cannot set an Authorization header, so the
// service token rides in the query string instead.
//
// Usage:
//
//	app.Get("/events/stream", middleware.SSEAuthMiddleware(), eventService.StreamEventsSSE)
func SSEAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("QUEST_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ QUEST_SERVICE_TOKEN is not set — service cannot authenticate SSE clients")
	}

	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(string(c.Request().URI().QueryArgs().Peek("token")))
		if token == "" {
			log.Printf("[SSEAuth] ❌ Missing token query param for %s", c.Path())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token in query",
			})
		}

		if token != expectedToken {
			log.Printf("[SSEAuth] ❌ Invalid token for %s (prefix: %.10s...)", c.Path(), token)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		return c.Next()
	}
}

// handlers/event_routes.go
package handlers

import (
	"strconv"

	"earn-quest-service/middleware"
	"earn-quest-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	app.Get("/quests/:id/events", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		events, err := eventService.ListByQuest(c.Params("id"), limit)
		if err != nil {
			return fail(c, "failed to list events", err)
		}
		return c.JSON(events)
	})

	// SSE feed; EventSource clients authenticate via ?token=
	app.Get("/events/stream", middleware.SSEAuthMiddleware(), eventService.StreamEventsSSE)
}

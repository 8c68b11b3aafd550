// handlers/stats_routes.go
package handlers

import (
	"earn-quest-service/middleware"
	"earn-quest-service/models"
	"earn-quest-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupStatsRoutes(app *fiber.App, statsService *services.StatsService, progressionService *services.ProgressionService, securityService *services.SecurityService) {
	// 🔓 Public reads
	app.Get("/stats/platform", func(c *fiber.Ctx) error {
		stats, err := statsService.GetPlatformStats()
		if err != nil {
			return fail(c, "failed to fetch platform stats", err)
		}
		return c.JSON(stats)
	})

	app.Get("/stats/creators/:creator", func(c *fiber.Ctx) error {
		stats, err := statsService.GetCreatorStats(c.Params("creator"))
		if err != nil {
			return fail(c, "failed to fetch creator stats", err)
		}
		return c.JSON(stats)
	})

	app.Get("/users/:user/progress", func(c *fiber.Ctx) error {
		prog, err := progressionService.GetProgress(c.Params("user"))
		if err != nil {
			return fail(c, "failed to fetch user progress", err)
		}
		return c.JSON(fiber.Map{
			"user":             prog.User,
			"xp":               prog.XP,
			"level":            prog.Level,
			"quests_completed": prog.QuestsCompleted,
		})
	})

	app.Get("/users/:user/badges", func(c *fiber.Ctx) error {
		badges, err := progressionService.ListBadges(c.Params("user"))
		if err != nil {
			return fail(c, "failed to fetch badges", err)
		}
		return c.JSON(badges)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/badges/grant", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)

		var req struct {
			User  string       `json:"user"`
			Badge models.Badge `json:"badge"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := progressionService.GrantBadge(caller, req.User, req.Badge); err != nil {
			return fail(c, "badge grant failed", err)
		}
		return c.JSON(fiber.Map{
			"message": "badge granted",
			"user":    req.User,
			"badge":   req.Badge,
		})
	})

	adminGroup.Post("/stats/reset", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)
		if err := statsService.ResetPlatformStats(caller, securityService); err != nil {
			return fail(c, "stats reset failed", err)
		}
		return c.JSON(fiber.Map{"message": "platform stats reset"})
	})
}

// handlers/security_routes.go
package handlers

import (
	"earn-quest-service/middleware"
	"earn-quest-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSecurityRoutes(app *fiber.App, securityService *services.SecurityService) {
	app.Get("/security/state", func(c *fiber.Ctx) error {
		state, err := securityService.State()
		if err != nil {
			return fail(c, "failed to fetch security state", err)
		}
		return c.JSON(fiber.Map{
			"paused":               state.Paused,
			"unpause_threshold":    state.UnpauseThreshold,
			"unpause_timelock_s":   state.UnpauseTimelockSeconds,
			"unpause_round":        state.UnpauseRound,
			"approvals_this_round": state.UnpauseApprovalCount,
			"scheduled_unpause_at": state.ScheduledUnpauseAt,
		})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/pause", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)
		if err := securityService.EmergencyPause(caller); err != nil {
			return fail(c, "pause failed", err)
		}
		return c.JSON(fiber.Map{"message": "platform paused"})
	})

	adminGroup.Post("/unpause/approve", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)
		if err := securityService.EmergencyApproveUnpause(caller); err != nil {
			return fail(c, "unpause approval failed", err)
		}
		return c.JSON(fiber.Map{"message": "unpause approved"})
	})

	adminGroup.Post("/unpause", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)
		if err := securityService.EmergencyUnpause(caller); err != nil {
			return fail(c, "unpause failed", err)
		}
		return c.JSON(fiber.Map{"message": "platform unpaused"})
	})

	adminGroup.Post("/withdraw", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)

		var req struct {
			Asset  string `json:"asset"`
			To     string `json:"to"`
			Amount int64  `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := securityService.EmergencyWithdraw(caller, req.Asset, req.To, req.Amount); err != nil {
			return fail(c, "emergency withdrawal failed", err)
		}
		return c.JSON(fiber.Map{"message": "funds withdrawn", "amount": req.Amount})
	})

	adminGroup.Post("/admins", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)

		var req struct {
			Address string `json:"address"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := securityService.AddAdmin(caller, req.Address); err != nil {
			return fail(c, "failed to add admin", err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "admin added"})
	})

	adminGroup.Delete("/admins/:address", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)
		if err := securityService.RemoveAdmin(caller, c.Params("address")); err != nil {
			return fail(c, "failed to remove admin", err)
		}
		return c.JSON(fiber.Map{"message": "admin removed"})
	})

	adminGroup.Put("/unpause/threshold", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)

		var req struct {
			Threshold int `json:"threshold"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := securityService.SetUnpauseThreshold(caller, req.Threshold); err != nil {
			return fail(c, "failed to set threshold", err)
		}
		return c.JSON(fiber.Map{"message": "threshold updated", "threshold": req.Threshold})
	})

	adminGroup.Put("/unpause/timelock", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)

		var req struct {
			Seconds int64 `json:"seconds"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := securityService.SetUnpauseTimelock(caller, req.Seconds); err != nil {
			return fail(c, "failed to set timelock", err)
		}
		return c.JSON(fiber.Map{"message": "timelock updated", "seconds": req.Seconds})
	})
}

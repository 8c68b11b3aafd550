// handlers/escrow_routes.go
package handlers

import (
	"earn-quest-service/middleware"
	"earn-quest-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEscrowRoutes(app *fiber.App, escrowService *services.EscrowService) {
	// 🔓 Public reads
	app.Get("/quests/:id/escrow", func(c *fiber.Ctx) error {
		info, err := escrowService.GetInfo(c.Params("id"))
		if err != nil {
			return fail(c, "failed to fetch escrow", err)
		}
		return c.JSON(info)
	})

	app.Get("/quests/:id/escrow/balance", func(c *fiber.Ctx) error {
		balance, err := escrowService.GetBalance(c.Params("id"))
		if err != nil {
			return fail(c, "failed to fetch escrow balance", err)
		}
		return c.JSON(fiber.Map{"quest_id": c.Params("id"), "available": balance})
	})

	// 🔐 Secured routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/quests/:id/escrow/deposit", func(c *fiber.Ctx) error {
		depositor := c.Locals("user_id").(string)

		var req struct {
			Token  string `json:"token"`
			Amount int64  `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := escrowService.Deposit(c.Params("id"), depositor, req.Token, req.Amount); err != nil {
			return fail(c, "deposit failed", err)
		}
		return c.JSON(fiber.Map{"message": "escrow funded", "amount": req.Amount})
	})

	secured.Post("/quests/:id/cancel", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)
		refunded, err := escrowService.CancelQuest(c.Params("id"), caller)
		if err != nil {
			return fail(c, "cancellation failed", err)
		}
		return c.JSON(fiber.Map{"message": "quest cancelled", "refunded": refunded})
	})

	secured.Post("/quests/:id/expire", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)
		refunded, err := escrowService.ExpireQuest(c.Params("id"), caller)
		if err != nil {
			return fail(c, "expiry failed", err)
		}
		return c.JSON(fiber.Map{"message": "quest expired", "refunded": refunded})
	})

	secured.Post("/quests/:id/escrow/withdraw", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)
		withdrawn, err := escrowService.WithdrawUnclaimed(c.Params("id"), caller)
		if err != nil {
			return fail(c, "withdrawal failed", err)
		}
		return c.JSON(fiber.Map{"message": "unclaimed funds withdrawn", "withdrawn": withdrawn})
	})
}

// handlers/quest_routes.go
package handlers

import (
	"strconv"
	"time"

	"earn-quest-service/middleware"
	"earn-quest-service/models"
	"earn-quest-service/services"

	"github.com/gofiber/fiber/v2"
)

type questRequest struct {
	ID           string                  `json:"id"`
	RewardAsset  string                  `json:"reward_asset"`
	RewardAmount int64                   `json:"reward_amount"`
	Verifier     string                  `json:"verifier"`
	Deadline     time.Time               `json:"deadline"`
	Metadata     *services.MetadataInput `json:"metadata"`
}

func paging(c *fiber.Ctx) (int, int) {
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	return offset, limit
}

func SetupQuestRoutes(app *fiber.App, questService *services.QuestService) {
	// 🔓 Public routes — no user context, but still require Gateway auth
	app.Get("/quests", func(c *fiber.Ctx) error {
		offset, limit := paging(c)

		if creator := c.Query("creator"); creator != "" {
			quests, err := questService.ByCreator(creator, offset, limit)
			if err != nil {
				return fail(c, "failed to list quests", err)
			}
			return c.JSON(quests)
		}
		if status := c.Query("status"); status != "" {
			quests, err := questService.ByStatus(models.QuestStatus(status), offset, limit)
			if err != nil {
				return fail(c, "failed to list quests", err)
			}
			return c.JSON(quests)
		}
		if minStr := c.Query("min_reward"); minStr != "" || c.Query("max_reward") != "" {
			minReward, _ := strconv.ParseInt(minStr, 10, 64)
			maxReward, _ := strconv.ParseInt(c.Query("max_reward", "0"), 10, 64)
			quests, err := questService.ByRewardRange(minReward, maxReward, offset, limit)
			if err != nil {
				return fail(c, "failed to list quests", err)
			}
			return c.JSON(quests)
		}

		quests, err := questService.ActiveQuests(offset, limit)
		if err != nil {
			return fail(c, "failed to list quests", err)
		}
		return c.JSON(quests)
	})

	app.Get("/quests/:id", func(c *fiber.Ctx) error {
		quest, err := questService.Get(c.Params("id"))
		if err != nil {
			return fail(c, "failed to fetch quest", err)
		}
		return c.JSON(quest)
	})

	app.Get("/quests/:id/metadata", func(c *fiber.Ctx) error {
		meta, err := questService.GetMetadata(c.Params("id"))
		if err != nil {
			return fail(c, "failed to fetch quest metadata", err)
		}
		return c.JSON(meta)
	})

	// 🔐 Secured routes — require user context (caller address), enforced via middleware
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/quests", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)

		var req questRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if req.Metadata != nil {
			id, err := questService.RegisterWithMetadata(req.ID, caller, req.RewardAsset, req.RewardAmount, req.Verifier, req.Deadline, *req.Metadata)
			if err != nil {
				return fail(c, "failed to register quest", err)
			}
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
		}

		if err := questService.Register(req.ID, caller, req.RewardAsset, req.RewardAmount, req.Verifier, req.Deadline); err != nil {
			return fail(c, "failed to register quest", err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": req.ID})
	})

	secured.Post("/quests/batch", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)

		var req struct {
			Quests []services.BatchQuestInput `json:"quests"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := questService.RegisterBatch(caller, req.Quests); err != nil {
			return fail(c, "batch registration failed", err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    "quests registered",
			"registered": len(req.Quests),
		})
	})

	secured.Patch("/quests/:id/status", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)

		var req struct {
			Status models.QuestStatus `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := questService.UpdateStatus(c.Params("id"), caller, req.Status); err != nil {
			return fail(c, "status update failed", err)
		}
		return c.JSON(fiber.Map{"id": c.Params("id"), "status": req.Status})
	})

	secured.Put("/quests/:id/metadata", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)

		var req services.MetadataInput
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := questService.UpdateMetadata(c.Params("id"), caller, req); err != nil {
			return fail(c, "metadata update failed", err)
		}
		return c.JSON(fiber.Map{"message": "metadata updated"})
	})

	secured.Delete("/quests/:id", func(c *fiber.Ctx) error {
		caller := c.Locals("user_id").(string)
		if err := questService.Delete(c.Params("id"), caller); err != nil {
			return fail(c, "quest deletion failed", err)
		}
		return c.JSON(fiber.Map{"message": "quest removed"})
	})
}

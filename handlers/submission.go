// handlers/submission_routes.go
package handlers

import (
	"fmt"

	"earn-quest-service/middleware"
	"earn-quest-service/services"
	"earn-quest-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupSubmissionRoutes(app *fiber.App, submissionService *services.SubmissionService, payoutService *services.PayoutService) {
	// 🔓 Public reads
	app.Get("/quests/:id/submissions", func(c *fiber.Ctx) error {
		offset, limit := paging(c)
		subs, err := submissionService.ListByQuest(c.Params("id"), offset, limit)
		if err != nil {
			return fail(c, "failed to list submissions", err)
		}
		return c.JSON(subs)
	})

	app.Get("/quests/:id/submissions/:submitter", func(c *fiber.Ctx) error {
		sub, err := submissionService.Get(c.Params("id"), c.Params("submitter"))
		if err != nil {
			return fail(c, "failed to fetch submission", err)
		}
		return c.JSON(sub)
	})

	// 🔐 Secured routes — require user context
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/quests/:id/submissions", func(c *fiber.Ctx) error {
		submitter := c.Locals("user_id").(string)

		var req struct {
			ProofHash string `json:"proof_hash"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := submissionService.Submit(c.Params("id"), submitter, req.ProofHash); err != nil {
			return fail(c, "submission failed", err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"quest_id":  c.Params("id"),
			"submitter": submitter,
		})
	})

	// Proof artifact upload: stores the file in R2 and returns its URL plus
	// the sha256 digest the client should submit as proof_hash.
	secured.Post("/quests/:id/proofs", func(c *fiber.Ctx) error {
		submitter := c.Locals("user_id").(string)

		fileHeader, err := c.FormFile("proof")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing proof file",
				"cause": err.Error(),
			})
		}

		key := fmt.Sprintf("proofs/%s/%s-%s", c.Params("id"), submitter, uuid.NewString())
		url, digest, err := utils.UploadProofArtifact(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "proof upload failed",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"url":        url,
			"proof_hash": digest,
		})
	})

	secured.Post("/quests/:id/submissions/:submitter/approve", func(c *fiber.Ctx) error {
		verifier := c.Locals("user_id").(string)
		if err := submissionService.Approve(c.Params("id"), c.Params("submitter"), verifier); err != nil {
			return fail(c, "approval failed", err)
		}
		return c.JSON(fiber.Map{"message": "submission approved"})
	})

	secured.Post("/quests/:id/submissions/:submitter/reject", func(c *fiber.Ctx) error {
		verifier := c.Locals("user_id").(string)
		if err := submissionService.Reject(c.Params("id"), c.Params("submitter"), verifier); err != nil {
			return fail(c, "rejection failed", err)
		}
		return c.JSON(fiber.Map{"message": "submission rejected"})
	})

	secured.Post("/submissions/approve-batch", func(c *fiber.Ctx) error {
		verifier := c.Locals("user_id").(string)

		var req struct {
			Approvals []services.BatchApprovalInput `json:"approvals"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := submissionService.ApproveBatch(verifier, req.Approvals); err != nil {
			return fail(c, "batch approval failed", err)
		}
		return c.JSON(fiber.Map{
			"message":  "submissions approved",
			"approved": len(req.Approvals),
		})
	})

	secured.Post("/quests/:id/claim", func(c *fiber.Ctx) error {
		submitter := c.Locals("user_id").(string)
		if err := payoutService.ClaimReward(c.Params("id"), submitter); err != nil {
			return fail(c, "claim failed", err)
		}
		return c.JSON(fiber.Map{"message": "reward claimed"})
	})
}

// handlers/httperr.go
package handlers

import (
	"errors"

	"earn-quest-service/services"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error to an HTTP status. Unknown errors are 500s.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrQuestNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrEscrowNotFound):
		return fiber.StatusNotFound

	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusForbidden

	case errors.Is(err, services.ErrPaused):
		return fiber.StatusLocked

	case errors.Is(err, services.ErrQuestAlreadyExists),
		errors.Is(err, services.ErrDuplicateSubmission),
		errors.Is(err, services.ErrAlreadyClaimed),
		errors.Is(err, services.ErrAlreadyApproved),
		errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrQuestNotActive),
		errors.Is(err, services.ErrQuestNotTerminal),
		errors.Is(err, services.ErrQuestNotExpired),
		errors.Is(err, services.ErrEscrowInactive),
		errors.Is(err, services.ErrInsufficientApprovals),
		errors.Is(err, services.ErrTimelockNotExpired):
		return fiber.StatusConflict

	case errors.Is(err, services.ErrInvalidRewardAmount),
		errors.Is(err, services.ErrAmountTooLarge),
		errors.Is(err, services.ErrDeadlineInPast),
		errors.Is(err, services.ErrQuestExpired),
		errors.Is(err, services.ErrStringTooLong),
		errors.Is(err, services.ErrArrayTooLong),
		errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrInvalidProofHash),
		errors.Is(err, services.ErrDescriptionConflict),
		errors.Is(err, services.ErrTokenMismatch):
		return fiber.StatusBadRequest

	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrInsufficientEscrow),
		errors.Is(err, services.ErrNoFundsToWithdraw):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, msg string, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}

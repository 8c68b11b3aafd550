package services

import "errors"

// Typed failures surfaced by the quest/escrow/security services. Handlers map
// these to HTTP statuses; nothing is retried or silently recovered.
var (
	// Authorization
	ErrUnauthorized = errors.New("caller is not authorized for this operation")

	// State
	ErrQuestNotActive          = errors.New("quest is not active")
	ErrQuestNotTerminal        = errors.New("quest is not in a terminal state")
	ErrQuestNotExpired         = errors.New("quest deadline has not passed yet")
	ErrInvalidStatusTransition = errors.New("status transition is not allowed")
	ErrEscrowInactive          = errors.New("escrow has been deactivated")
	ErrPaused                  = errors.New("service is paused")

	// NotFound
	ErrQuestNotFound      = errors.New("quest not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrEscrowNotFound     = errors.New("no escrow exists for this quest")

	// Validation
	ErrInvalidRewardAmount = errors.New("reward amount must be positive")
	ErrAmountTooLarge      = errors.New("amount exceeds the maximum allowed")
	ErrDeadlineInPast      = errors.New("deadline must be strictly in the future")
	ErrQuestExpired        = errors.New("quest deadline has passed")
	ErrStringTooLong       = errors.New("string exceeds the maximum length")
	ErrArrayTooLong        = errors.New("list exceeds the maximum length")
	ErrInvalidAddress      = errors.New("invalid or conflicting address")
	ErrInvalidProofHash    = errors.New("proof hash must be 32 non-zero bytes")
	ErrDescriptionConflict = errors.New("metadata cannot carry both an inline description and a description hash")
	ErrTokenMismatch       = errors.New("token does not match the quest reward asset")

	// Conflict
	ErrQuestAlreadyExists  = errors.New("quest id already exists")
	ErrDuplicateSubmission = errors.New("submitter already has a submission for this quest")
	ErrAlreadyClaimed      = errors.New("reward has already been claimed")
	ErrAlreadyApproved     = errors.New("admin already approved unpause this round")

	// Funds
	ErrInsufficientBalance = errors.New("treasury balance is too low")
	ErrInsufficientEscrow  = errors.New("escrow balance is too low")
	ErrTransferFailed      = errors.New("asset transfer failed")
	ErrNoFundsToWithdraw   = errors.New("no funds left to withdraw")

	// Security
	ErrInsufficientApprovals = errors.New("unpause has not reached the approval threshold")
	ErrTimelockNotExpired    = errors.New("unpause timelock has not expired")
)

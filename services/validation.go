package services

import (
	"encoding/hex"
	"time"

	"earn-quest-service/models"
)

// Validation limits
const (
	// MaxRewardAmount caps a single quest reward (token base units).
	MaxRewardAmount int64 = 1_000_000_000_000_000

	// MaxQuestIDLength caps creator-chosen quest identifiers.
	MaxQuestIDLength = 32

	// MaxQuestClaims caps successful claims per quest.
	MaxQuestClaims = 10_000

	// MaxBatchQuestRegistration caps items in one batch registration.
	MaxBatchQuestRegistration = 50

	// MaxBatchApprovals caps items in one batch approval.
	MaxBatchApprovals = 50

	// MaxBadgesPerUser caps granted badges per user.
	MaxBadgesPerUser = 50
)

// Metadata limits
const (
	MaxMetadataTitleLen       = 80
	MaxMetadataCategoryLen    = 40
	MaxMetadataTagLen         = 32
	MaxMetadataRequirementLen = 200
	MaxMetadataDescriptionLen = 1200
	MaxMetadataTags           = 15
	MaxMetadataRequirements   = 20
)

// ValidateRewardAmount checks amount is in (0, MaxRewardAmount].
func ValidateRewardAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidRewardAmount
	}
	if amount > MaxRewardAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// ValidateQuestID checks the identifier is non-empty and within length bounds.
func ValidateQuestID(id string) error {
	if id == "" || len(id) > MaxQuestIDLength {
		return ErrStringTooLong
	}
	return nil
}

// ValidateDeadline requires deadline strictly after now.
func ValidateDeadline(deadline, now time.Time) error {
	if !deadline.After(now) {
		return ErrDeadlineInPast
	}
	return nil
}

// ValidateQuestNotExpired requires now strictly before the quest deadline.
func ValidateQuestNotExpired(deadline, now time.Time) error {
	if !now.Before(deadline) {
		return ErrQuestExpired
	}
	return nil
}

// ValidateAddressesDistinct rejects empty identities and creator == verifier.
func ValidateAddressesDistinct(creator, verifier string) error {
	if creator == "" || verifier == "" || creator == verifier {
		return ErrInvalidAddress
	}
	return nil
}

// ValidateBatchSize rejects empty batches and batches over max.
func ValidateBatchSize(length, max int) error {
	if length == 0 || length > max {
		return ErrArrayTooLong
	}
	return nil
}

// ValidateProofHash requires a hex encoding of exactly 32 bytes that is not
// the all-zero value. The zero hash is indistinguishable from an unset field,
// so it is rejected rather than stored.
func ValidateProofHash(proofHash string) error {
	raw, err := hex.DecodeString(proofHash)
	if err != nil || len(raw) != 32 {
		return ErrInvalidProofHash
	}
	zero := true
	for _, b := range raw {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return ErrInvalidProofHash
	}
	return nil
}

// questTransitions is the full quest status transition table. Self-transitions
// are absent on purpose: a no-op transition is still an error.
var questTransitions = map[models.QuestStatus][]models.QuestStatus{
	models.QuestStatusActive: {
		models.QuestStatusPaused,
		models.QuestStatusCompleted,
		models.QuestStatusExpired,
		models.QuestStatusCancelled,
	},
	models.QuestStatusPaused: {
		models.QuestStatusActive,
		models.QuestStatusExpired,
		models.QuestStatusCancelled,
	},
}

// ValidateQuestStatusTransition checks from → to against the transition table.
func ValidateQuestStatusTransition(from, to models.QuestStatus) error {
	for _, allowed := range questTransitions[from] {
		if to == allowed {
			return nil
		}
	}
	return ErrInvalidStatusTransition
}

var submissionTransitions = map[models.SubmissionStatus][]models.SubmissionStatus{
	models.SubmissionStatusPending: {
		models.SubmissionStatusApproved,
		models.SubmissionStatusRejected,
	},
	models.SubmissionStatusApproved: {
		models.SubmissionStatusPaid,
	},
}

// ValidateSubmissionStatusTransition checks from → to for submissions.
func ValidateSubmissionStatusTransition(from, to models.SubmissionStatus) error {
	for _, allowed := range submissionTransitions[from] {
		if to == allowed {
			return nil
		}
	}
	return ErrInvalidStatusTransition
}

// ValidateQuestClaimsLimit rejects claims past MaxQuestClaims.
func ValidateQuestClaimsLimit(totalClaims int) error {
	if totalClaims >= MaxQuestClaims {
		return ErrArrayTooLong
	}
	return nil
}

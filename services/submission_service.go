package services

import (
	"errors"
	"fmt"
	"time"

	"earn-quest-service/models"

	"gorm.io/gorm"
)

// BatchApprovalInput is one item of a batch approval. Verifier is implied
// from the batch-level caller.
type BatchApprovalInput struct {
	QuestID   string `json:"quest_id"`
	Submitter string `json:"submitter"`
}

// SubmissionService owns Submission records and the submission state machine.
type SubmissionService struct {
	DB          *gorm.DB
	Security    *SecurityService
	Escrow      *EscrowService
	Stats       *StatsService
	Progression *ProgressionService
	Events      *EventService

	now func() time.Time
}

func NewSubmissionService(db *gorm.DB, security *SecurityService, escrow *EscrowService, stats *StatsService, progression *ProgressionService, events *EventService) *SubmissionService {
	return &SubmissionService{
		DB:          db,
		Security:    security,
		Escrow:      escrow,
		Stats:       stats,
		Progression: progression,
		Events:      events,
		now:         time.Now,
	}
}

func getSubmissionTx(tx *gorm.DB, questID, submitter string) (*models.Submission, error) {
	var submission models.Submission
	err := tx.Where("quest_id = ? AND submitter = ?", questID, submitter).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	return &submission, nil
}

// Submit records a proof of completion. One submission per (quest, submitter);
// the quest must be Active and inside its deadline.
func (s *SubmissionService) Submit(questID, submitter, proofHash string) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		quest, err := getQuestTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}
		if quest.Status != models.QuestStatusActive {
			return ErrQuestNotActive
		}
		if err := ValidateQuestNotExpired(quest.Deadline, s.now()); err != nil {
			return err
		}
		if err := ValidateProofHash(proofHash); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Submission{}).
			Where("quest_id = ? AND submitter = ?", questID, submitter).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check for duplicate submission: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateSubmission
		}

		submission := models.Submission{
			QuestID:     questID,
			Submitter:   submitter,
			ProofHash:   proofHash,
			Status:      models.SubmissionStatusPending,
			SubmittedAt: s.now(),
		}
		if err := tx.Create(&submission).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}

		_, firstContact, err := s.Progression.ensureProgressTx(tx, submitter)
		if err != nil {
			return err
		}
		if err := s.Stats.recordSubmissionTx(tx, quest.Creator, firstContact); err != nil {
			return err
		}
		return s.Events.appendTx(tx, questID, models.EventProofSubmitted, submitter, 0)
	})
}

// approveTx is the shared core for single and batch approval.
func (s *SubmissionService) approveTx(tx *gorm.DB, questID, submitter, verifier string) error {
	quest, err := getQuestTx(lockForUpdate(tx), questID)
	if err != nil {
		return err
	}
	if verifier != quest.Verifier {
		return ErrUnauthorized
	}

	submission, err := getSubmissionTx(lockForUpdate(tx), questID, submitter)
	if err != nil {
		return err
	}
	if err := ValidateSubmissionStatusTransition(submission.Status, models.SubmissionStatusApproved); err != nil {
		return err
	}

	// Funded quests must still cover the reward at approval time. Quests
	// funded by raw treasury balance (no escrow row) skip the check.
	if s.Escrow.hasEscrowTx(tx, questID) {
		if err := s.Escrow.validateSufficientTx(tx, questID, quest.RewardAmount); err != nil {
			return err
		}
	}

	submission.Status = models.SubmissionStatusApproved
	if err := tx.Save(submission).Error; err != nil {
		return fmt.Errorf("failed to approve submission: %w", err)
	}
	return s.Events.appendTx(tx, questID, models.EventSubmissionApproved, verifier, 0)
}

// Approve moves one submission Pending → Approved. Quest verifier only.
func (s *SubmissionService) Approve(questID, submitter, verifier string) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.approveTx(tx, questID, submitter, verifier)
	})
}

// ApproveBatch approves up to MaxBatchApprovals submissions atomically. The
// first failure aborts the whole batch.
func (s *SubmissionService) ApproveBatch(verifier string, items []BatchApprovalInput) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	if err := ValidateBatchSize(len(items), MaxBatchApprovals); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := s.approveTx(tx, item.QuestID, item.Submitter, verifier); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reject moves one submission Pending → Rejected. Quest verifier only.
func (s *SubmissionService) Reject(questID, submitter, verifier string) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		quest, err := getQuestTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}
		if verifier != quest.Verifier {
			return ErrUnauthorized
		}
		submission, err := getSubmissionTx(lockForUpdate(tx), questID, submitter)
		if err != nil {
			return err
		}
		if err := ValidateSubmissionStatusTransition(submission.Status, models.SubmissionStatusRejected); err != nil {
			return err
		}
		submission.Status = models.SubmissionStatusRejected
		if err := tx.Save(submission).Error; err != nil {
			return fmt.Errorf("failed to reject submission: %w", err)
		}
		return s.Events.appendTx(tx, questID, models.EventSubmissionRejected, verifier, 0)
	})
}

// validateClaimTx guards the claim path: not already paid, Approved → Paid is
// a legal transition, and the quest claim counter has room.
func (s *SubmissionService) validateClaimTx(tx *gorm.DB, questID, submitter string) error {
	quest, err := getQuestTx(lockForUpdate(tx), questID)
	if err != nil {
		return err
	}
	submission, err := getSubmissionTx(lockForUpdate(tx), questID, submitter)
	if err != nil {
		return err
	}
	if submission.Status == models.SubmissionStatusPaid {
		return ErrAlreadyClaimed
	}
	if err := ValidateSubmissionStatusTransition(submission.Status, models.SubmissionStatusPaid); err != nil {
		return err
	}
	return ValidateQuestClaimsLimit(quest.TotalClaims)
}

// Get returns one submission.
func (s *SubmissionService) Get(questID, submitter string) (*models.Submission, error) {
	return getSubmissionTx(s.DB, questID, submitter)
}

// ListByQuest pages all submissions for one quest, newest first.
func (s *SubmissionService) ListByQuest(questID string, offset, limit int) ([]models.Submission, error) {
	var submissions []models.Submission
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if err := s.DB.Where("quest_id = ?", questID).
		Order("submitted_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

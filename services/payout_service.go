package services

import (
	"fmt"

	"earn-quest-service/models"

	"gorm.io/gorm"
)

// PayoutService executes reward transfers. Escrow-funded quests are checked
// and debited against their escrow; quests funded by raw treasury balance
// (created before escrow existed, or never funded through Deposit) fall back
// to a plain balance-checked transfer.
type PayoutService struct {
	DB          *gorm.DB
	Security    *SecurityService
	Assets      AssetTransfer
	Escrow      *EscrowService
	Submissions *SubmissionService
	Stats       *StatsService
	Progression *ProgressionService
	Events      *EventService
}

func NewPayoutService(db *gorm.DB, security *SecurityService, assets AssetTransfer, escrow *EscrowService, submissions *SubmissionService, stats *StatsService, progression *ProgressionService, events *EventService) *PayoutService {
	return &PayoutService{
		DB:          db,
		Security:    security,
		Assets:      assets,
		Escrow:      escrow,
		Submissions: submissions,
		Stats:       stats,
		Progression: progression,
		Events:      events,
	}
}

// transferRewardTx is the low-level balance-checked transfer out of the
// treasury. Any ledger failure maps to ErrTransferFailed.
func (s *PayoutService) transferRewardTx(tx *gorm.DB, rewardAsset, to string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidRewardAmount
	}

	balance, err := s.Assets.BalanceOf(tx, rewardAsset, TreasuryHolder)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if balance < amount {
		return ErrInsufficientBalance
	}

	if err := s.Assets.Transfer(tx, rewardAsset, TreasuryHolder, to, amount); err != nil {
		return ErrTransferFailed
	}
	return nil
}

// transferRewardFromEscrowTx sends a reward with escrow tracking:
//
//  1. escrow exists → fail fast if it cannot cover the amount
//  2. execute the transfer
//  3. escrow exists → debit the escrow ledger (post-transfer, so a failed
//     transfer never corrupts the accounting)
func (s *PayoutService) transferRewardFromEscrowTx(tx *gorm.DB, questID, rewardAsset, to string, amount int64) error {
	hasEscrow := s.Escrow.hasEscrowTx(tx, questID)

	if hasEscrow {
		if err := s.Escrow.validateSufficientTx(tx, questID, amount); err != nil {
			return err
		}
	}

	if err := s.transferRewardTx(tx, rewardAsset, to, amount); err != nil {
		return err
	}

	if hasEscrow {
		return s.Escrow.recordPayoutTx(tx, questID, to, amount)
	}
	return nil
}

// ClaimReward pays an approved submitter: reward transfer, submission flipped
// to Paid, claim counter bumped, stats and XP recorded — one atomic unit.
func (s *PayoutService) ClaimReward(questID, submitter string) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Submissions.validateClaimTx(tx, questID, submitter); err != nil {
			return err
		}

		quest, err := getQuestTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}

		if err := s.transferRewardFromEscrowTx(tx, questID, quest.RewardAsset, submitter, quest.RewardAmount); err != nil {
			return err
		}

		submission, err := getSubmissionTx(lockForUpdate(tx), questID, submitter)
		if err != nil {
			return err
		}
		submission.Status = models.SubmissionStatusPaid
		if err := tx.Save(submission).Error; err != nil {
			return fmt.Errorf("failed to mark submission paid: %w", err)
		}

		quest.TotalClaims++
		if err := tx.Save(quest).Error; err != nil {
			return fmt.Errorf("failed to bump claim counter: %w", err)
		}

		if err := s.Stats.recordClaimTx(tx, quest.Creator, quest.RewardAmount); err != nil {
			return err
		}
		if err := s.Progression.recordClaimTx(tx, submitter); err != nil {
			return err
		}
		return s.Events.appendTx(tx, questID, models.EventRewardClaimed, submitter, quest.RewardAmount)
	})
}

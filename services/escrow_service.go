package services

import (
	"errors"
	"fmt"
	"time"

	"earn-quest-service/models"

	"gorm.io/gorm"
)

// EscrowService tracks per-quest deposits, payouts, and refunds.
//
// Money flow:
//
//	Deposit:          creator wallet → treasury (tokens locked)
//	recordPayoutTx:   accounting update after PayoutService sends tokens
//	refundRemainingTx: treasury → creator wallet (leftover returned)
type EscrowService struct {
	DB       *gorm.DB
	Security *SecurityService
	Assets   AssetTransfer
	Events   *EventService

	now func() time.Time
}

func NewEscrowService(db *gorm.DB, security *SecurityService, assets AssetTransfer, events *EventService) *EscrowService {
	return &EscrowService{DB: db, Security: security, Assets: assets, Events: events, now: time.Now}
}

func (s *EscrowService) hasEscrowTx(tx *gorm.DB, questID string) bool {
	var count int64
	if err := tx.Model(&models.EscrowInfo{}).
		Where("quest_id = ?", questID).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func getEscrowTx(tx *gorm.DB, questID string) (*models.EscrowInfo, error) {
	var escrow models.EscrowInfo
	err := tx.First(&escrow, "quest_id = ?", questID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEscrowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow for quest %s: %w", questID, err)
	}
	return &escrow, nil
}

// Deposit locks tokens for a quest. Only the quest creator may fund it; the
// token must match the quest's reward asset, and the quest must not be
// terminal. The first deposit creates the escrow record, later deposits top
// it up. An inactive escrow rejects all further deposits.
func (s *EscrowService) Deposit(questID, depositor, token string, amount int64) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := ValidateRewardAmount(amount); err != nil {
			return err
		}

		quest, err := getQuestTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}
		if depositor != quest.Creator {
			return ErrUnauthorized
		}
		if quest.Status.IsTerminal() {
			return ErrQuestNotActive
		}
		if token != quest.RewardAsset {
			return ErrTokenMismatch
		}

		escrow, err := getEscrowTx(lockForUpdate(tx), questID)
		if err != nil && !errors.Is(err, ErrEscrowNotFound) {
			return err
		}
		if escrow != nil && !escrow.IsActive {
			return ErrEscrowInactive
		}

		// Tokens move creator → treasury; a failed transfer leaves the
		// accounting untouched.
		if err := s.Assets.Transfer(tx, token, depositor, TreasuryHolder, amount); err != nil {
			return ErrTransferFailed
		}

		if escrow == nil {
			escrow = &models.EscrowInfo{
				QuestID:        questID,
				Depositor:      depositor,
				Token:          token,
				TotalDeposited: amount,
				IsActive:       true,
				CreatedAt:      s.now(),
				DepositCount:   1,
			}
			if err := tx.Create(escrow).Error; err != nil {
				return fmt.Errorf("failed to create escrow record: %w", err)
			}
		} else {
			escrow.TotalDeposited += amount
			escrow.DepositCount++
			if err := tx.Save(escrow).Error; err != nil {
				return fmt.Errorf("failed to top up escrow record: %w", err)
			}
		}

		return s.Events.appendTx(tx, questID, models.EventEscrowDeposited, depositor, amount)
	})
}

// validateSufficientTx checks an active escrow can cover amount.
func (s *EscrowService) validateSufficientTx(tx *gorm.DB, questID string, amount int64) error {
	escrow, err := getEscrowTx(lockForUpdate(tx), questID)
	if err != nil {
		return err
	}
	if !escrow.IsActive {
		return ErrEscrowInactive
	}
	if escrow.Available() < amount {
		return ErrInsufficientEscrow
	}
	return nil
}

// recordPayoutTx debits the ledger after a reward transfer already succeeded.
// Sufficiency is re-checked here to defend against drift between the
// approval-time check and claim-time execution.
func (s *EscrowService) recordPayoutTx(tx *gorm.DB, questID, recipient string, amount int64) error {
	escrow, err := getEscrowTx(lockForUpdate(tx), questID)
	if err != nil {
		return err
	}
	if !escrow.IsActive {
		return ErrEscrowInactive
	}
	if escrow.Available() < amount {
		return ErrInsufficientEscrow
	}

	escrow.TotalPaidOut += amount
	if err := tx.Save(escrow).Error; err != nil {
		return fmt.Errorf("failed to record payout: %w", err)
	}
	return s.Events.appendTx(tx, questID, models.EventEscrowPayout, recipient, amount)
}

// refundRemainingTx returns whatever is left to the depositor and deactivates
// the escrow. This is the single deactivation point; a second call finds
// available == 0 and only re-asserts IsActive = false.
func (s *EscrowService) refundRemainingTx(tx *gorm.DB, questID string) (int64, error) {
	escrow, err := getEscrowTx(lockForUpdate(tx), questID)
	if err != nil {
		return 0, err
	}

	available := escrow.Available()
	if available > 0 {
		if err := s.Assets.Transfer(tx, escrow.Token, TreasuryHolder, escrow.Depositor, available); err != nil {
			return 0, ErrTransferFailed
		}
	}

	escrow.TotalRefunded += available
	escrow.IsActive = false
	if err := tx.Save(escrow).Error; err != nil {
		return 0, fmt.Errorf("failed to record refund: %w", err)
	}

	if available > 0 {
		if err := s.Events.appendTx(tx, questID, models.EventEscrowRefunded, escrow.Depositor, available); err != nil {
			return 0, err
		}
	}
	return available, nil
}

// CancelQuest cancels a non-terminal quest and refunds remaining escrow to
// the creator. Returns the amount refunded (0 when no escrow exists).
func (s *EscrowService) CancelQuest(questID, caller string) (int64, error) {
	if err := s.Security.RequireNotPaused(); err != nil {
		return 0, err
	}
	var refunded int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		quest, err := getQuestTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}
		if caller != quest.Creator {
			return ErrUnauthorized
		}
		if quest.Status.IsTerminal() {
			return ErrQuestNotActive
		}
		if err := ValidateQuestStatusTransition(quest.Status, models.QuestStatusCancelled); err != nil {
			return err
		}
		quest.Status = models.QuestStatusCancelled
		if err := tx.Save(quest).Error; err != nil {
			return fmt.Errorf("failed to cancel quest: %w", err)
		}

		if s.hasEscrowTx(tx, questID) {
			refunded, err = s.refundRemainingTx(tx, questID)
			if err != nil {
				return err
			}
		}
		return s.Events.appendTx(tx, questID, models.EventQuestCancelled, caller, refunded)
	})
	if err != nil {
		return 0, err
	}
	return refunded, nil
}

// ExpireQuest marks a past-deadline quest Expired and refunds remaining
// escrow. Creator only; rejected before the deadline.
func (s *EscrowService) ExpireQuest(questID, caller string) (int64, error) {
	if err := s.Security.RequireNotPaused(); err != nil {
		return 0, err
	}
	var refunded int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		quest, err := getQuestTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}
		if caller != quest.Creator {
			return ErrUnauthorized
		}
		if quest.Status.IsTerminal() {
			return ErrQuestNotActive
		}
		if s.now().Before(quest.Deadline) {
			return ErrQuestNotExpired
		}
		if err := ValidateQuestStatusTransition(quest.Status, models.QuestStatusExpired); err != nil {
			return err
		}
		quest.Status = models.QuestStatusExpired
		if err := tx.Save(quest).Error; err != nil {
			return fmt.Errorf("failed to expire quest: %w", err)
		}

		if s.hasEscrowTx(tx, questID) {
			refunded, err = s.refundRemainingTx(tx, questID)
			if err != nil {
				return err
			}
		}
		return s.Events.appendTx(tx, questID, models.EventQuestExpired, caller, refunded)
	})
	if err != nil {
		return 0, err
	}
	return refunded, nil
}

// WithdrawUnclaimed reclaims leftover escrow from a quest that is already
// terminal. Fails when nothing is left to withdraw.
func (s *EscrowService) WithdrawUnclaimed(questID, caller string) (int64, error) {
	if err := s.Security.RequireNotPaused(); err != nil {
		return 0, err
	}
	var refunded int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		quest, err := getQuestTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}
		if caller != quest.Creator {
			return ErrUnauthorized
		}
		if !quest.Status.IsTerminal() {
			return ErrQuestNotTerminal
		}

		escrow, err := getEscrowTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}
		if escrow.Available() <= 0 {
			return ErrNoFundsToWithdraw
		}

		refunded, err = s.refundRemainingTx(tx, questID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return refunded, nil
}

// GetBalance returns the available (unspent, unrefunded) escrow balance.
func (s *EscrowService) GetBalance(questID string) (int64, error) {
	escrow, err := getEscrowTx(s.DB, questID)
	if err != nil {
		return 0, err
	}
	return escrow.Available(), nil
}

// GetInfo returns the full escrow record.
func (s *EscrowService) GetInfo(questID string) (*models.EscrowInfo, error) {
	return getEscrowTx(s.DB, questID)
}

package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"earn-quest-service/models"

	"gorm.io/gorm"
)

// SecurityService is the process-wide pause gate plus the multisig unpause
// protocol. Every mutating entry point of the other services calls
// RequireNotPaused before touching any state.
type SecurityService struct {
	DB     *gorm.DB
	Assets AssetTransfer
	Events *EventService

	now func() time.Time
}

func NewSecurityService(db *gorm.DB, assets AssetTransfer, events *EventService) *SecurityService {
	return &SecurityService{DB: db, Assets: assets, Events: events, now: time.Now}
}

// EnsureState creates the singleton state row and seeds the initial admin.
// Idempotent; called once at startup.
func (s *SecurityService) EnsureState(initialAdmin string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var state models.SecurityState
		err := tx.First(&state, "id = ?", 1).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			state = models.SecurityState{ID: 1, UnpauseThreshold: 2}
			if err := tx.Create(&state).Error; err != nil {
				return fmt.Errorf("failed to create security state: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to load security state: %w", err)
		}

		if initialAdmin == "" {
			return nil
		}
		var admin models.AdminAccount
		err = tx.First(&admin, "address = ?", initialAdmin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.AdminAccount{Address: initialAdmin}).Error
		}
		return err
	})
}

func (s *SecurityService) stateTx(tx *gorm.DB) (*models.SecurityState, error) {
	var state models.SecurityState
	if err := tx.First(&state, "id = ?", 1).Error; err != nil {
		return nil, fmt.Errorf("failed to load security state: %w", err)
	}
	return &state, nil
}

// IsPaused reports the current pause flag.
func (s *SecurityService) IsPaused() bool {
	state, err := s.stateTx(s.DB)
	if err != nil {
		log.Printf("[SECURITY] failed to read pause state, treating as paused: %v", err)
		return true
	}
	return state.Paused
}

// RequireNotPaused is the gate in front of every mutating operation.
func (s *SecurityService) RequireNotPaused() error {
	if s.IsPaused() {
		return ErrPaused
	}
	return nil
}

// IsAdmin reports membership in the admin set.
func (s *SecurityService) IsAdmin(address string) bool {
	if address == "" {
		return false
	}
	var count int64
	if err := s.DB.Model(&models.AdminAccount{}).
		Where("address = ?", address).
		Count(&count).Error; err != nil {
		log.Printf("[SECURITY] admin lookup failed for %s: %v", address, err)
		return false
	}
	return count > 0
}

// EmergencyPause freezes every mutating entry point immediately. Admin only.
func (s *SecurityService) EmergencyPause(caller string) error {
	if !s.IsAdmin(caller) {
		return ErrUnauthorized
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		state, err := s.stateTx(lockForUpdate(tx))
		if err != nil {
			return err
		}
		state.Paused = true
		if err := tx.Save(state).Error; err != nil {
			return fmt.Errorf("failed to set pause flag: %w", err)
		}
		return s.Events.appendTx(tx, "", models.EventEmergencyPaused, caller, 0)
	})
}

// EmergencyApproveUnpause records one admin's approval for the current round.
// Reaching the threshold schedules the unpause time once; approvals arriving
// after that are counted but do not move the schedule.
func (s *SecurityService) EmergencyApproveUnpause(caller string) error {
	if !s.IsAdmin(caller) {
		return ErrUnauthorized
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		state, err := s.stateTx(lockForUpdate(tx))
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.UnpauseApproval{}).
			Where("round = ? AND admin = ?", state.UnpauseRound, caller).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check approval: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyApproved
		}

		approval := models.UnpauseApproval{Round: state.UnpauseRound, Admin: caller}
		if err := tx.Create(&approval).Error; err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}
		state.UnpauseApprovalCount++

		if err := s.Events.appendTx(tx, "", models.EventUnpauseApproved, caller, 0); err != nil {
			return err
		}

		if state.UnpauseApprovalCount >= state.UnpauseThreshold && state.ScheduledUnpauseAt == nil {
			scheduled := s.now().Add(time.Duration(state.UnpauseTimelockSeconds) * time.Second)
			state.ScheduledUnpauseAt = &scheduled
			if err := s.Events.appendTx(tx, "", models.EventTimelockScheduled, caller, 0); err != nil {
				return err
			}
		}

		if err := tx.Save(state).Error; err != nil {
			return fmt.Errorf("failed to update security state: %w", err)
		}
		return nil
	})
}

// EmergencyUnpause lifts the pause once the quorum's timelock has expired.
// Bumping the round invalidates every approval of the finished round.
func (s *SecurityService) EmergencyUnpause(caller string) error {
	if !s.IsAdmin(caller) {
		return ErrUnauthorized
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		state, err := s.stateTx(lockForUpdate(tx))
		if err != nil {
			return err
		}
		if state.ScheduledUnpauseAt == nil {
			return ErrInsufficientApprovals
		}
		if s.now().Before(*state.ScheduledUnpauseAt) {
			return ErrTimelockNotExpired
		}

		state.Paused = false
		state.UnpauseRound++
		state.UnpauseApprovalCount = 0
		state.ScheduledUnpauseAt = nil
		if err := tx.Save(state).Error; err != nil {
			return fmt.Errorf("failed to update security state: %w", err)
		}
		return s.Events.appendTx(tx, "", models.EventEmergencyUnpaused, caller, 0)
	})
}

// EmergencyWithdraw moves raw treasury balance out while paused. A rescue
// valve independent of escrow accounting, not a normal payout path.
func (s *SecurityService) EmergencyWithdraw(caller, asset, to string, amount int64) error {
	if !s.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if !s.IsPaused() {
		return ErrPaused
	}
	if err := ValidateRewardAmount(amount); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		balance, err := s.Assets.BalanceOf(tx, asset, TreasuryHolder)
		if err != nil {
			return err
		}
		if balance < amount {
			return ErrInsufficientBalance
		}
		if err := s.Assets.Transfer(tx, asset, TreasuryHolder, to, amount); err != nil {
			return ErrTransferFailed
		}
		return s.Events.appendTx(tx, "", models.EventEmergencyWithdrawn, caller, amount)
	})
}

// AddAdmin adds an address to the admin set. Admin only; rejected while paused.
func (s *SecurityService) AddAdmin(caller, newAdmin string) error {
	if err := s.RequireNotPaused(); err != nil {
		return err
	}
	if !s.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if newAdmin == "" {
		return ErrInvalidAddress
	}
	var existing int64
	if err := s.DB.Model(&models.AdminAccount{}).
		Where("address = ?", newAdmin).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	}
	if existing > 0 {
		return nil
	}
	return s.DB.Create(&models.AdminAccount{Address: newAdmin}).Error
}

// RemoveAdmin drops an address from the admin set. Admin only; rejected while paused.
func (s *SecurityService) RemoveAdmin(caller, admin string) error {
	if err := s.RequireNotPaused(); err != nil {
		return err
	}
	if !s.IsAdmin(caller) {
		return ErrUnauthorized
	}
	return s.DB.Where("address = ?", admin).Delete(&models.AdminAccount{}).Error
}

// SetUnpauseThreshold configures the approval quorum. Admin only.
func (s *SecurityService) SetUnpauseThreshold(caller string, threshold int) error {
	if !s.IsAdmin(caller) {
		return ErrUnauthorized
	}
	return s.DB.Model(&models.SecurityState{}).
		Where("id = ?", 1).
		Update("unpause_threshold", threshold).Error
}

// SetUnpauseTimelock configures the delay between quorum and unpause. Admin only.
func (s *SecurityService) SetUnpauseTimelock(caller string, seconds int64) error {
	if !s.IsAdmin(caller) {
		return ErrUnauthorized
	}
	return s.DB.Model(&models.SecurityState{}).
		Where("id = ?", 1).
		Update("unpause_timelock_seconds", seconds).Error
}

// State returns the current security state row.
func (s *SecurityService) State() (*models.SecurityState, error) {
	return s.stateTx(s.DB)
}

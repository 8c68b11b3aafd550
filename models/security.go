package models

import "time"

// SecurityState is the single-row pause/multisig state. Row ID is always 1.
//
// Unpause protocol: admins approve within the current round; once approvals
// reach UnpauseThreshold a timelock is scheduled. Executing the unpause bumps
// UnpauseRound, which invalidates every per-admin approval of the old round
// without touching the rows themselves.
type SecurityState struct {
	ID                     int        `gorm:"primaryKey" json:"id"`
	Paused                 bool       `gorm:"not null;default:false" json:"paused"`
	UnpauseThreshold       int        `gorm:"not null;default:2" json:"unpause_threshold"`
	UnpauseTimelockSeconds int64      `gorm:"not null;default:0" json:"unpause_timelock_seconds"`
	UnpauseRound           int        `gorm:"not null;default:0" json:"unpause_round"`
	UnpauseApprovalCount   int        `gorm:"not null;default:0" json:"unpause_approval_count"`
	ScheduledUnpauseAt     *time.Time `json:"scheduled_unpause_at,omitempty"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// AdminAccount is a member of the admin set gating security operations.
type AdminAccount struct {
	Address   string    `gorm:"primaryKey;size:128" json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// UnpauseApproval records one admin's approval within one unpause round.
type UnpauseApproval struct {
	Round     int       `gorm:"primaryKey" json:"round"`
	Admin     string    `gorm:"primaryKey;size:128" json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

// EscrowInfo tracks tokens locked per quest. One row per quest, created
// lazily on the first deposit.
//
// Money flow:
//
//	deposit:  creator wallet → treasury (TotalDeposited += amount)
//	payout:   treasury → submitter     (TotalPaidOut += amount, post-transfer)
//	refund:   treasury → creator       (TotalRefunded += remaining, deactivates)
//
// Invariant after every mutation: TotalDeposited >= TotalPaidOut + TotalRefunded.
type EscrowInfo struct {
	QuestID        string    `gorm:"primaryKey;size:32" json:"quest_id"`
	Depositor      string    `gorm:"size:128;not null" json:"depositor"` // always the quest creator
	Token          string    `gorm:"size:64;not null" json:"token"`
	TotalDeposited int64     `gorm:"not null;default:0" json:"total_deposited"`
	TotalPaidOut   int64     `gorm:"not null;default:0" json:"total_paid_out"`
	TotalRefunded  int64     `gorm:"not null;default:0" json:"total_refunded"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"` // first deposit, never changes on top-ups
	DepositCount   int       `gorm:"not null;default:0" json:"deposit_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Available is the balance still spendable on payouts or refunds.
func (e *EscrowInfo) Available() int64 {
	return e.TotalDeposited - e.TotalPaidOut - e.TotalRefunded
}

package models

import "time"

// TokenAccount mirrors a holder's balance for one asset. The platform
// treasury holder owns all escrowed funds; payouts and refunds move value
// out of it through the token ledger.
type TokenAccount struct {
	Token     string    `gorm:"primaryKey;size:64" json:"token"`
	Holder    string    `gorm:"primaryKey;size:128" json:"holder"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

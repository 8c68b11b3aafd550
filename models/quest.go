package models

import (
	"time"

	"gorm.io/gorm"
)

// QuestStatus is the lifecycle state of a quest
type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusPaused    QuestStatus = "paused"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusExpired   QuestStatus = "expired"
	QuestStatusCancelled QuestStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is allowed.
func (s QuestStatus) IsTerminal() bool {
	switch s {
	case QuestStatusCompleted, QuestStatusExpired, QuestStatusCancelled:
		return true
	}
	return false
}

// Quest = a reward-bearing task posted by a creator, approved by a designated
// verifier, paid from escrowed funds (or raw treasury balance for legacy quests).
type Quest struct {
	ID           string      `gorm:"primaryKey;size:32" json:"id"` // creator-chosen, globally unique
	Creator      string      `gorm:"size:128;not null;index" json:"creator"`
	RewardAsset  string      `gorm:"size:64;not null" json:"reward_asset"`
	RewardAmount int64       `gorm:"not null" json:"reward_amount"`
	Verifier     string      `gorm:"size:128;not null" json:"verifier"`
	Deadline     time.Time   `gorm:"not null" json:"deadline"`
	Status       QuestStatus `gorm:"size:16;not null;default:'active';index" json:"status"`
	TotalClaims  int         `gorm:"not null;default:0" json:"total_claims"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

package models

import "time"

// Badge tiers a user can hold. Granted by admins; capped per user.
type Badge string

const (
	BadgeRookie   Badge = "rookie"
	BadgeExplorer Badge = "explorer"
	BadgeVeteran  Badge = "veteran"
	BadgeMaster   Badge = "master"
	BadgeLegend   Badge = "legend"
)

// ValidBadge reports whether b is one of the known badge tiers.
func ValidBadge(b Badge) bool {
	switch b {
	case BadgeRookie, BadgeExplorer, BadgeVeteran, BadgeMaster, BadgeLegend:
		return true
	}
	return false
}

// UserProgress tracks per-submitter reputation (denormalized for reads)
type UserProgress struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"`
	User            string    `gorm:"uniqueIndex;size:128;not null" json:"user"`
	XP              int64     `gorm:"not null;default:0" json:"xp"`
	Level           int       `gorm:"not null;default:1" json:"level"`
	QuestsCompleted int64     `gorm:"not null;default:0" json:"quests_completed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserBadge = one badge granted to one user
type UserBadge struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	User      string    `gorm:"index;size:128;not null" json:"user"`
	Badge     Badge     `gorm:"size:16;not null" json:"badge"`
	GrantedBy string    `gorm:"size:128" json:"granted_by"`
	CreatedAt time.Time `json:"created_at"`
}

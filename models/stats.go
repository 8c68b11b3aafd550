package models

import "time"

// PlatformStats is the single-row platform-wide counter set (row ID 1).
// Append-only bookkeeping; bumped on quest creation, submission, and claim.
type PlatformStats struct {
	ID                  int       `gorm:"primaryKey" json:"id"`
	TotalQuestsCreated  int64     `gorm:"not null;default:0" json:"total_quests_created"`
	TotalSubmissions    int64     `gorm:"not null;default:0" json:"total_submissions"`
	TotalRewardsPosted  int64     `gorm:"not null;default:0" json:"total_rewards_posted"`      // sum of reward amounts ever posted
	TotalRewardsPaidOut int64     `gorm:"not null;default:0" json:"total_rewards_paid_out"`    // sum actually distributed via claims
	TotalActiveUsers    int64     `gorm:"not null;default:0" json:"total_active_users"`        // unique submitters
	TotalRewardsClaimed int64     `gorm:"not null;default:0" json:"total_rewards_claimed"`     // count of Paid submissions
	UpdatedAt           time.Time `json:"updated_at"`
}

// CreatorStats aggregates activity across all quests of one creator.
type CreatorStats struct {
	Creator                  string    `gorm:"primaryKey;size:128" json:"creator"`
	QuestsCreated            int64     `gorm:"not null;default:0" json:"quests_created"`
	TotalRewardsPosted       int64     `gorm:"not null;default:0" json:"total_rewards_posted"`
	TotalSubmissionsReceived int64     `gorm:"not null;default:0" json:"total_submissions_received"`
	TotalClaimsPaid          int64     `gorm:"not null;default:0" json:"total_claims_paid"`
	UpdatedAt                time.Time `json:"updated_at"`
}

package models

import "time"

// QuestEventType names every money or status movement the service records.
type QuestEventType string

const (
	EventQuestRegistered     QuestEventType = "quest_registered"
	EventQuestStatusChanged  QuestEventType = "quest_status_changed"
	EventQuestCancelled      QuestEventType = "quest_cancelled"
	EventQuestExpired        QuestEventType = "quest_expired"
	EventQuestDeadlinePassed QuestEventType = "quest_deadline_passed"
	EventProofSubmitted      QuestEventType = "proof_submitted"
	EventSubmissionApproved  QuestEventType = "submission_approved"
	EventSubmissionRejected  QuestEventType = "submission_rejected"
	EventRewardClaimed       QuestEventType = "reward_claimed"
	EventEscrowDeposited     QuestEventType = "escrow_deposited"
	EventEscrowPayout        QuestEventType = "escrow_payout"
	EventEscrowRefunded      QuestEventType = "escrow_refunded"
	EventEmergencyPaused     QuestEventType = "emergency_paused"
	EventUnpauseApproved     QuestEventType = "unpause_approved"
	EventTimelockScheduled   QuestEventType = "timelock_scheduled"
	EventEmergencyUnpaused   QuestEventType = "emergency_unpaused"
	EventEmergencyWithdrawn  QuestEventType = "emergency_withdrawn"
)

// QuestEvent is the append-only event feed. Rows are written inside the same
// transaction as the state change they describe, streamed over SSE, and
// pushed to the notify service by the notify worker (NotifiedAt set on success).
type QuestEvent struct {
	ID         string         `gorm:"primaryKey;type:uuid" json:"id"`
	QuestID    string         `gorm:"size:32;index" json:"quest_id"` // empty for platform-level security events
	Type       QuestEventType `gorm:"size:32;not null;index" json:"type"`
	Actor      string         `gorm:"size:128" json:"actor"`
	Amount     int64          `json:"amount,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	NotifiedAt *time.Time     `json:"notified_at,omitempty"`
}

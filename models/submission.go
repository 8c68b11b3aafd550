package models

import "time"

// SubmissionStatus tracks a proof through review and payment
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
	SubmissionStatusPaid     SubmissionStatus = "paid"
)

// Submission = a submitter's proof-of-completion for one quest.
// At most one row per (quest_id, submitter); never deleted in the main flow.
type Submission struct {
	QuestID     string           `gorm:"primaryKey;size:32" json:"quest_id"`
	Submitter   string           `gorm:"primaryKey;size:128" json:"submitter"`
	ProofHash   string           `gorm:"size:64;not null" json:"proof_hash"` // hex of 32 bytes
	Status      SubmissionStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	SubmittedAt time.Time        `gorm:"not null" json:"submitted_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

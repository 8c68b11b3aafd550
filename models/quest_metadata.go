package models

import "time"

// QuestMetadata holds the free-form, user-facing details of a quest.
// Descriptions are stored inline for short content or as a 32-byte hash
// reference for large content hosted elsewhere.
type QuestMetadata struct {
	QuestID         string    `gorm:"primaryKey;size:32" json:"quest_id"`
	Title           string    `gorm:"size:80;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	DescriptionHash string    `gorm:"size:64" json:"description_hash,omitempty"` // set instead of Description
	Requirements    []string  `gorm:"serializer:json" json:"requirements"`
	Category        string    `gorm:"size:40" json:"category"`
	Tags            []string  `gorm:"serializer:json" json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

package services

import (
	"fmt"
	"time"

	"earn-quest-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventService appends to and reads from the quest event feed. Appends always
// run on the caller's transaction handle so an event commits with the state
// change it describes.
type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

func (s *EventService) appendTx(tx *gorm.DB, questID string, eventType models.QuestEventType, actor string, amount int64) error {
	event := models.QuestEvent{
		ID:      uuid.NewString(),
		QuestID: questID,
		Type:    eventType,
		Actor:   actor,
		Amount:  amount,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to append %s event: %w", eventType, err)
	}
	return nil
}

// ListByQuest returns the event history for one quest, oldest first.
func (s *EventService) ListByQuest(questID string, limit int) ([]models.QuestEvent, error) {
	var events []models.QuestEvent
	query := s.DB.Where("quest_id = ?", questID).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events for quest %s: %w", questID, err)
	}
	return events, nil
}

// ListUnnotified returns events the notify worker has not dispatched yet.
func (s *EventService) ListUnnotified(limit int) ([]models.QuestEvent, error) {
	var events []models.QuestEvent
	if err := s.DB.Where("notified_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list unnotified events: %w", err)
	}
	return events, nil
}

// MarkNotified stamps a batch of events as dispatched.
func (s *EventService) MarkNotified(ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.Model(&models.QuestEvent{}).
		Where("id IN ?", ids).
		Update("notified_at", at).Error
}

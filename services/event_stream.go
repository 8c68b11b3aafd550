package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"earn-quest-service/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// listAfter pages the feed past a composite (created_at, id) cursor. The id
// tiebreaker keeps events sharing the last-seen timestamp from being skipped;
// timestamps are not unique across rows written in the same transaction.
func (s *EventService) listAfter(questID string, createdAt time.Time, id string) ([]models.QuestEvent, error) {
	var events []models.QuestEvent
	query := s.DB.
		Where("(created_at > ? OR (created_at = ? AND id > ?))", createdAt, createdAt, id).
		Order("created_at ASC, id ASC")
	if questID != "" {
		query = query.Where("quest_id = ?", questID)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// StreamEventsSSE streams quest events in real time. Optional ?quest_id=
// narrows the feed to a single quest.
func (s *EventService) StreamEventsSSE(c *fiber.Ctx) error {
	questID := c.Query("quest_id")

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var lastCreatedAt time.Time
		var lastID string

		// Initialize cursor at the newest existing event
		var latest models.QuestEvent
		cursorQuery := s.DB.Order("created_at DESC, id DESC")
		if questID != "" {
			cursorQuery = cursorQuery.Where("quest_id = ?", questID)
		}
		if err := cursorQuery.First(&latest).Error; err == nil {
			lastCreatedAt, lastID = latest.CreatedAt, latest.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error: %v", err)
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				fresh, err := s.listAfter(questID, lastCreatedAt, lastID)
				if err != nil {
					log.Printf("SSE query error: %v", err)
					continue
				}
				if len(fresh) == 0 {
					continue
				}

				lastCreatedAt = fresh[len(fresh)-1].CreatedAt
				lastID = fresh[len(fresh)-1].ID

				for _, event := range fresh {
					payload, _ := json.Marshal(event)
					fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
				}

				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}

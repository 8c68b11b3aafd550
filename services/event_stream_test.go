package services

import (
	"testing"
	"time"

	"earn-quest-service/models"
)

func TestListAfterKeepsTimestampTies(t *testing.T) {
	env := newTestEnv(t)

	// Two events written in the same transaction share a timestamp.
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first := models.QuestEvent{ID: "00000000-0000-0000-0000-000000000001", QuestID: "quest-1", Type: models.EventQuestRegistered, Actor: testCreator, CreatedAt: at}
	second := models.QuestEvent{ID: "00000000-0000-0000-0000-000000000002", QuestID: "quest-1", Type: models.EventEscrowDeposited, Actor: testCreator, Amount: 500, CreatedAt: at}
	if err := env.DB.Create(&first).Error; err != nil {
		t.Fatalf("create first event: %v", err)
	}
	if err := env.DB.Create(&second).Error; err != nil {
		t.Fatalf("create second event: %v", err)
	}

	// Cursor sits on the first event; its timestamp twin must still arrive.
	fresh, err := env.Events.listAfter("quest-1", first.CreatedAt, first.ID)
	if err != nil {
		t.Fatalf("listAfter failed: %v", err)
	}
	if len(fresh) != 1 || fresh[0].ID != second.ID {
		t.Fatalf("events after cursor = %+v, want only the second event", fresh)
	}

	// Advancing past the second event drains the feed.
	fresh, err = env.Events.listAfter("quest-1", second.CreatedAt, second.ID)
	if err != nil {
		t.Fatalf("listAfter failed: %v", err)
	}
	if len(fresh) != 0 {
		t.Fatalf("events after final cursor = %d, want 0", len(fresh))
	}
}

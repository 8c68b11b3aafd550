// services/scheduler.go
package services

import (
	"log"
	"time"

	"earn-quest-service/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StartDeadlineScheduler runs a minutely sweep over active quests whose
// deadline has passed and emits a deadline event for each, once. Quests are
// not auto-expired; expiry stays an explicit creator/admin action so the
// escrow refund runs under a caller.
func (s *QuestService) StartDeadlineScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if err := s.SweepDeadlines(); err != nil {
				log.Printf("[Scheduler] deadline sweep failed: %v", err)
			}
		}),
	)
}

// SweepDeadlines emits quest_deadline_passed for every active quest past its
// deadline that has not been flagged yet. Exposed for the scheduler and tests.
func (s *QuestService) SweepDeadlines() error {
	now := s.now()

	var quests []models.Quest
	err := s.DB.Where("status = ? AND deadline <= ?", models.QuestStatusActive, now).
		Find(&quests).Error
	if err != nil {
		return err
	}

	for _, q := range quests {
		q := q
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			var count int64
			err := tx.Model(&models.QuestEvent{}).
				Where("quest_id = ? AND type = ?", q.ID, models.EventQuestDeadlinePassed).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return nil
			}
			log.Printf("⏰ Quest %s passed its deadline", q.ID)
			return s.Events.appendTx(tx, q.ID, models.EventQuestDeadlinePassed, q.Creator, 0)
		})
		if err != nil {
			log.Printf("[Scheduler] Failed to flag quest %s: %v", q.ID, err)
		}
	}
	return nil
}

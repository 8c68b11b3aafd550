package services

import (
	"errors"
	"fmt"

	"earn-quest-service/models"

	"gorm.io/gorm"
)

// StatsService maintains the append-only platform and per-creator counters.
// All record* methods run on the caller's transaction.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

func platformStatsTx(tx *gorm.DB) (*models.PlatformStats, error) {
	var stats models.PlatformStats
	err := tx.First(&stats, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.PlatformStats{ID: 1}
		if err := tx.Create(&stats).Error; err != nil {
			return nil, fmt.Errorf("failed to create platform stats row: %w", err)
		}
		return &stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load platform stats: %w", err)
	}
	return &stats, nil
}

func creatorStatsTx(tx *gorm.DB, creator string) (*models.CreatorStats, error) {
	var stats models.CreatorStats
	err := tx.First(&stats, "creator = ?", creator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.CreatorStats{Creator: creator}
		if err := tx.Create(&stats).Error; err != nil {
			return nil, fmt.Errorf("failed to create creator stats row: %w", err)
		}
		return &stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load creator stats: %w", err)
	}
	return &stats, nil
}

func (s *StatsService) recordQuestCreatedTx(tx *gorm.DB, creator string, rewardAmount int64) error {
	platform, err := platformStatsTx(tx)
	if err != nil {
		return err
	}
	platform.TotalQuestsCreated++
	platform.TotalRewardsPosted += rewardAmount
	if err := tx.Save(platform).Error; err != nil {
		return fmt.Errorf("failed to update platform stats: %w", err)
	}

	cs, err := creatorStatsTx(tx, creator)
	if err != nil {
		return err
	}
	cs.QuestsCreated++
	cs.TotalRewardsPosted += rewardAmount
	if err := tx.Save(cs).Error; err != nil {
		return fmt.Errorf("failed to update creator stats: %w", err)
	}
	return nil
}

// recordSubmissionTx bumps submission counters. firstTimeSubmitter marks a
// submitter the platform has never seen before (unique-user counter).
func (s *StatsService) recordSubmissionTx(tx *gorm.DB, creator string, firstTimeSubmitter bool) error {
	platform, err := platformStatsTx(tx)
	if err != nil {
		return err
	}
	platform.TotalSubmissions++
	if firstTimeSubmitter {
		platform.TotalActiveUsers++
	}
	if err := tx.Save(platform).Error; err != nil {
		return fmt.Errorf("failed to update platform stats: %w", err)
	}

	cs, err := creatorStatsTx(tx, creator)
	if err != nil {
		return err
	}
	cs.TotalSubmissionsReceived++
	if err := tx.Save(cs).Error; err != nil {
		return fmt.Errorf("failed to update creator stats: %w", err)
	}
	return nil
}

func (s *StatsService) recordClaimTx(tx *gorm.DB, creator string, amount int64) error {
	platform, err := platformStatsTx(tx)
	if err != nil {
		return err
	}
	platform.TotalRewardsClaimed++
	platform.TotalRewardsPaidOut += amount
	if err := tx.Save(platform).Error; err != nil {
		return fmt.Errorf("failed to update platform stats: %w", err)
	}

	cs, err := creatorStatsTx(tx, creator)
	if err != nil {
		return err
	}
	cs.TotalClaimsPaid++
	if err := tx.Save(cs).Error; err != nil {
		return fmt.Errorf("failed to update creator stats: %w", err)
	}
	return nil
}

// GetPlatformStats returns the platform counters (zero row if none yet).
func (s *StatsService) GetPlatformStats() (*models.PlatformStats, error) {
	var stats models.PlatformStats
	err := s.DB.First(&stats, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.PlatformStats{ID: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load platform stats: %w", err)
	}
	return &stats, nil
}

// GetCreatorStats returns one creator's counters (zero row if none yet).
func (s *StatsService) GetCreatorStats(creator string) (*models.CreatorStats, error) {
	var stats models.CreatorStats
	err := s.DB.First(&stats, "creator = ?", creator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CreatorStats{Creator: creator}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load creator stats: %w", err)
	}
	return &stats, nil
}

// ResetPlatformStats zeroes the platform counters. Admin only.
func (s *StatsService) ResetPlatformStats(caller string, security *SecurityService) error {
	if !security.IsAdmin(caller) {
		return ErrUnauthorized
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		stats, err := platformStatsTx(tx)
		if err != nil {
			return err
		}
		*stats = models.PlatformStats{ID: 1}
		return tx.Save(stats).Error
	})
}

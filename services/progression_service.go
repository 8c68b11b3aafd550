package services

import (
	"errors"
	"fmt"

	"earn-quest-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// XP awarded for each successfully claimed quest reward
const ClaimXP = 100

// levelForXP maps total XP to a level (1–5).
//
//	L1: 0–299, L2: 300–599, L3: 600–999, L4: 1000–1499, L5: 1500+
func levelForXP(xp int64) int {
	switch {
	case xp >= 1500:
		return 5
	case xp >= 1000:
		return 4
	case xp >= 600:
		return 3
	case xp >= 300:
		return 2
	default:
		return 1
	}
}

// ProgressionService tracks submitter XP, levels, and badges.
type ProgressionService struct {
	DB       *gorm.DB
	Security *SecurityService
}

func NewProgressionService(db *gorm.DB, security *SecurityService) *ProgressionService {
	return &ProgressionService{DB: db, Security: security}
}

// ensureProgressTx ensures a UserProgress row exists. The second return is
// true when the row was just created (the user's first contact).
func (s *ProgressionService) ensureProgressTx(tx *gorm.DB, user string) (*models.UserProgress, bool, error) {
	var prog models.UserProgress
	err := tx.Where("\"user\" = ?", user).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prog = models.UserProgress{
			ID:    uuid.NewString(),
			User:  user,
			Level: 1,
		}
		if err := tx.Create(&prog).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create progress record: %w", err)
		}
		return &prog, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load progress record: %w", err)
	}
	return &prog, false, nil
}

// recordClaimTx awards the claim XP, bumps the completed counter, and
// recomputes the level. Runs on the caller's transaction.
func (s *ProgressionService) recordClaimTx(tx *gorm.DB, user string) error {
	prog, _, err := s.ensureProgressTx(tx, user)
	if err != nil {
		return err
	}
	prog.XP += ClaimXP
	prog.QuestsCompleted++
	prog.Level = levelForXP(prog.XP)
	if err := tx.Save(prog).Error; err != nil {
		return fmt.Errorf("failed to update progress record: %w", err)
	}
	return nil
}

// GetProgress returns a user's progress (a fresh level-1 record if none exists).
func (s *ProgressionService) GetProgress(user string) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := s.DB.Where("\"user\" = ?", user).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserProgress{User: user, Level: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress record: %w", err)
	}
	return &prog, nil
}

// GrantBadge awards a badge to a user. Admin only; capped per user.
func (s *ProgressionService) GrantBadge(caller, user string, badge models.Badge) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	if !s.Security.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if !models.ValidBadge(badge) {
		return ErrInvalidAddress
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserBadge{}).
			Where("\"user\" = ?", user).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count badges: %w", err)
		}
		if count >= MaxBadgesPerUser {
			return ErrArrayTooLong
		}

		userBadge := models.UserBadge{
			ID:        uuid.NewString(),
			User:      user,
			Badge:     badge,
			GrantedBy: caller,
		}
		if err := tx.Create(&userBadge).Error; err != nil {
			return fmt.Errorf("failed to grant badge: %w", err)
		}
		return nil
	})
}

// ListBadges returns every badge a user holds, oldest first.
func (s *ProgressionService) ListBadges(user string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	if err := s.DB.Where("\"user\" = ?", user).
		Order("created_at ASC").
		Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

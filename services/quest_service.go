package services

import (
	"errors"
	"fmt"
	"time"

	"earn-quest-service/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchQuestInput is one item of a batch registration. Creator is implied
// from the batch-level caller.
type BatchQuestInput struct {
	ID           string    `json:"id"`
	RewardAsset  string    `json:"reward_asset"`
	RewardAmount int64     `json:"reward_amount"`
	Verifier     string    `json:"verifier"`
	Deadline     time.Time `json:"deadline"`
}

// MetadataInput is the user-facing quest detail payload.
type MetadataInput struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DescriptionHash string   `json:"description_hash"`
	Requirements    []string `json:"requirements"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
}

// QuestService owns Quest records and the quest status state machine.
type QuestService struct {
	DB       *gorm.DB
	Security *SecurityService
	Stats    *StatsService
	Events   *EventService

	now func() time.Time
}

func NewQuestService(db *gorm.DB, security *SecurityService, stats *StatsService, events *EventService) *QuestService {
	return &QuestService{DB: db, Security: security, Stats: stats, Events: events, now: time.Now}
}

func getQuestTx(tx *gorm.DB, id string) (*models.Quest, error) {
	var quest models.Quest
	if err := tx.First(&quest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestNotFound
		}
		return nil, fmt.Errorf("failed to load quest %s: %w", id, err)
	}
	return &quest, nil
}

// registerTx is the shared core for single and batch registration.
func (s *QuestService) registerTx(tx *gorm.DB, id, creator, rewardAsset string, rewardAmount int64, verifier string, deadline time.Time) error {
	if err := ValidateQuestID(id); err != nil {
		return err
	}
	if err := ValidateAddressesDistinct(creator, verifier); err != nil {
		return err
	}
	if err := ValidateRewardAmount(rewardAmount); err != nil {
		return err
	}
	if err := ValidateDeadline(deadline, s.now()); err != nil {
		return err
	}

	var existing int64
	if err := tx.Model(&models.Quest{}).Where("id = ?", id).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check quest existence: %w", err)
	}
	if existing > 0 {
		return ErrQuestAlreadyExists
	}

	quest := models.Quest{
		ID:           id,
		Creator:      creator,
		RewardAsset:  rewardAsset,
		RewardAmount: rewardAmount,
		Verifier:     verifier,
		Deadline:     deadline,
		Status:       models.QuestStatusActive,
	}
	if err := tx.Create(&quest).Error; err != nil {
		return fmt.Errorf("failed to create quest: %w", err)
	}

	if err := s.Stats.recordQuestCreatedTx(tx, creator, rewardAmount); err != nil {
		return err
	}
	return s.Events.appendTx(tx, id, models.EventQuestRegistered, creator, rewardAmount)
}

// Register creates a new Active quest.
func (s *QuestService) Register(id, creator, rewardAsset string, rewardAmount int64, verifier string, deadline time.Time) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.registerTx(tx, id, creator, rewardAsset, rewardAmount, verifier, deadline)
	})
}

// RegisterWithMetadata registers a quest and stores its metadata in the same
// transaction. When id is empty it is derived from the metadata title.
func (s *QuestService) RegisterWithMetadata(id, creator, rewardAsset string, rewardAmount int64, verifier string, deadline time.Time, metadata MetadataInput) (string, error) {
	if err := s.Security.RequireNotPaused(); err != nil {
		return "", err
	}
	if id == "" {
		id = slug.Make(metadata.Title)
		if len(id) > MaxQuestIDLength {
			id = id[:MaxQuestIDLength]
		}
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.registerTx(tx, id, creator, rewardAsset, rewardAmount, verifier, deadline); err != nil {
			return err
		}
		if err := validateMetadata(metadata); err != nil {
			return err
		}
		return setMetadataTx(tx, id, metadata)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RegisterBatch registers up to MaxBatchQuestRegistration quests atomically.
// The first failure aborts the whole batch.
func (s *QuestService) RegisterBatch(creator string, items []BatchQuestInput) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	if err := ValidateBatchSize(len(items), MaxBatchQuestRegistration); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := s.registerTx(tx, item.ID, creator, item.RewardAsset, item.RewardAmount, item.Verifier, item.Deadline); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateStatus moves a quest through the status state machine. Creator or
// admin only; every transition is validated against the table, including
// no-op self-transitions.
func (s *QuestService) UpdateStatus(id, caller string, newStatus models.QuestStatus) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		quest, err := getQuestTx(lockForUpdate(tx), id)
		if err != nil {
			return err
		}
		if caller != quest.Creator && !s.Security.IsAdmin(caller) {
			return ErrUnauthorized
		}
		if err := ValidateQuestStatusTransition(quest.Status, newStatus); err != nil {
			return err
		}
		quest.Status = newStatus
		if err := tx.Save(quest).Error; err != nil {
			return fmt.Errorf("failed to update quest status: %w", err)
		}
		return s.Events.appendTx(tx, id, models.EventQuestStatusChanged, caller, 0)
	})
}

// Get returns one quest by ID.
func (s *QuestService) Get(id string) (*models.Quest, error) {
	return getQuestTx(s.DB, id)
}

// UpdateMetadata replaces a quest's metadata. Creator or admin only.
func (s *QuestService) UpdateMetadata(questID, updater string, metadata MetadataInput) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		quest, err := getQuestTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}
		if updater != quest.Creator && !s.Security.IsAdmin(updater) {
			return ErrUnauthorized
		}
		if err := validateMetadata(metadata); err != nil {
			return err
		}
		return setMetadataTx(tx, questID, metadata)
	})
}

// GetMetadata returns a quest's metadata.
func (s *QuestService) GetMetadata(questID string) (*models.QuestMetadata, error) {
	var md models.QuestMetadata
	if err := s.DB.First(&md, "quest_id = ?", questID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestNotFound
		}
		return nil, fmt.Errorf("failed to load quest metadata: %w", err)
	}
	return &md, nil
}

// Delete removes a terminal quest and its metadata. Admin only; the explicit
// cleanup path — quests are never removed anywhere else.
func (s *QuestService) Delete(questID, caller string) error {
	if err := s.Security.RequireNotPaused(); err != nil {
		return err
	}
	if !s.Security.IsAdmin(caller) {
		return ErrUnauthorized
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		quest, err := getQuestTx(lockForUpdate(tx), questID)
		if err != nil {
			return err
		}
		if !quest.Status.IsTerminal() {
			return ErrQuestNotTerminal
		}
		if err := tx.Unscoped().Delete(quest).Error; err != nil {
			return fmt.Errorf("failed to delete quest: %w", err)
		}
		return tx.Where("quest_id = ?", questID).Delete(&models.QuestMetadata{}).Error
	})
}

//================================================================================
// Queries
//================================================================================

func (s *QuestService) listQuests(query *gorm.DB, offset, limit int) ([]models.Quest, error) {
	var quests []models.Quest
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&quests).Error; err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	return quests, nil
}

// ByStatus pages quests in one status.
func (s *QuestService) ByStatus(status models.QuestStatus, offset, limit int) ([]models.Quest, error) {
	return s.listQuests(s.DB.Where("status = ?", status), offset, limit)
}

// ByCreator pages one creator's quests.
func (s *QuestService) ByCreator(creator string, offset, limit int) ([]models.Quest, error) {
	return s.listQuests(s.DB.Where("creator = ?", creator), offset, limit)
}

// ActiveQuests pages quests still open for submissions.
func (s *QuestService) ActiveQuests(offset, limit int) ([]models.Quest, error) {
	return s.ByStatus(models.QuestStatusActive, offset, limit)
}

// ByRewardRange pages quests whose reward falls in [min, max].
func (s *QuestService) ByRewardRange(minReward, maxReward int64, offset, limit int) ([]models.Quest, error) {
	return s.listQuests(
		s.DB.Where("reward_amount >= ? AND reward_amount <= ?", minReward, maxReward),
		offset, limit,
	)
}

//================================================================================
// Metadata helpers
//================================================================================

func validateMetadata(md MetadataInput) error {
	if md.Title == "" || len(md.Title) > MaxMetadataTitleLen {
		return ErrStringTooLong
	}
	if len(md.Category) > MaxMetadataCategoryLen {
		return ErrStringTooLong
	}
	if len(md.Tags) > MaxMetadataTags {
		return ErrArrayTooLong
	}
	for _, tag := range md.Tags {
		if len(tag) > MaxMetadataTagLen {
			return ErrStringTooLong
		}
	}
	if len(md.Requirements) > MaxMetadataRequirements {
		return ErrArrayTooLong
	}
	for _, req := range md.Requirements {
		if len(req) > MaxMetadataRequirementLen {
			return ErrStringTooLong
		}
	}
	if md.DescriptionHash != "" {
		if md.Description != "" {
			return ErrDescriptionConflict
		}
		if err := ValidateProofHash(md.DescriptionHash); err != nil {
			return err
		}
	} else if len(md.Description) > MaxMetadataDescriptionLen {
		return ErrStringTooLong
	}
	return nil
}

func setMetadataTx(tx *gorm.DB, questID string, md MetadataInput) error {
	record := models.QuestMetadata{
		QuestID:         questID,
		Title:           md.Title,
		Description:     md.Description,
		DescriptionHash: md.DescriptionHash,
		Requirements:    md.Requirements,
		Category:        md.Category,
		Tags:            md.Tags,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quest_id"}},
		UpdateAll: true,
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to store quest metadata: %w", err)
	}
	return nil
}

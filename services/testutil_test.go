package services

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"earn-quest-service/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdmin    = "admin-1"
	testCreator  = "creator-1"
	testVerifier = "verifier-1"
	testToken    = "USDC"
)

// testProofHash is a valid 32-byte non-zero hex digest.
var testProofHash = strings.Repeat("ab", 32)

type testEnv struct {
	DB          *gorm.DB
	Ledger      *TokenLedger
	Events      *EventService
	Security    *SecurityService
	Stats       *StatsService
	Progression *ProgressionService
	Quests      *QuestService
	Escrow      *EscrowService
	Submissions *SubmissionService
	Payouts     *PayoutService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "quests.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Quest{},
		&models.QuestMetadata{},
		&models.Submission{},
		&models.EscrowInfo{},
		&models.TokenAccount{},
		&models.SecurityState{},
		&models.AdminAccount{},
		&models.UnpauseApproval{},
		&models.PlatformStats{},
		&models.CreatorStats{},
		&models.UserProgress{},
		&models.UserBadge{},
		&models.QuestEvent{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	env := &testEnv{DB: db, Ledger: NewTokenLedger()}
	env.Events = NewEventService(db)
	env.Security = NewSecurityService(db, env.Ledger, env.Events)
	env.Stats = NewStatsService(db)
	env.Progression = NewProgressionService(db, env.Security)
	env.Quests = NewQuestService(db, env.Security, env.Stats, env.Events)
	env.Escrow = NewEscrowService(db, env.Security, env.Ledger, env.Events)
	env.Submissions = NewSubmissionService(db, env.Security, env.Escrow, env.Stats, env.Progression, env.Events)
	env.Payouts = NewPayoutService(db, env.Security, env.Ledger, env.Escrow, env.Submissions, env.Stats, env.Progression, env.Events)

	if err := env.Security.EnsureState(testAdmin); err != nil {
		t.Fatalf("failed to seed security state: %v", err)
	}
	return env
}

// setClock pins every service clock to now.
func (e *testEnv) setClock(now time.Time) {
	clock := func() time.Time { return now }
	e.Security.now = clock
	e.Quests.now = clock
	e.Escrow.now = clock
	e.Submissions.now = clock
}

// registerQuest creates an Active quest with a deadline one day out.
func (e *testEnv) registerQuest(t *testing.T, id string, reward int64) {
	t.Helper()
	deadline := time.Now().Add(24 * time.Hour)
	if err := e.Quests.Register(id, testCreator, testToken, reward, testVerifier, deadline); err != nil {
		t.Fatalf("failed to register quest %s: %v", id, err)
	}
}

// fundCreator mints token balance for the default creator.
func (e *testEnv) fundCreator(t *testing.T, amount int64) {
	t.Helper()
	if err := e.Ledger.Mint(e.DB, testToken, testCreator, amount); err != nil {
		t.Fatalf("failed to mint creator balance: %v", err)
	}
}

func (e *testEnv) balance(t *testing.T, holder string) int64 {
	t.Helper()
	balance, err := e.Ledger.BalanceOf(e.DB, testToken, holder)
	if err != nil {
		t.Fatalf("failed to read balance of %s: %v", holder, err)
	}
	return balance
}

func (e *testEnv) countEvents(t *testing.T, questID string, eventType models.QuestEventType) int64 {
	t.Helper()
	var count int64
	if err := e.DB.Model(&models.QuestEvent{}).
		Where("quest_id = ? AND type = ?", questID, eventType).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count events: %v", err)
	}
	return count
}

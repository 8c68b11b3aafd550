package services

import (
	"errors"
	"testing"
	"time"

	"earn-quest-service/models"
)

const secondAdmin = "admin-2"

func addSecondAdmin(t *testing.T, env *testEnv) {
	t.Helper()
	if err := env.Security.AddAdmin(testAdmin, secondAdmin); err != nil {
		t.Fatalf("AddAdmin failed: %v", err)
	}
}

func TestPauseGatesMutations(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 1000)

	if err := env.Security.EmergencyPause("stranger"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger pause: got %v, want ErrUnauthorized", err)
	}
	if err := env.Security.EmergencyPause(testAdmin); err != nil {
		t.Fatalf("EmergencyPause failed: %v", err)
	}
	if !env.Security.IsPaused() {
		t.Fatal("IsPaused = false after pause")
	}

	deadline := time.Now().Add(time.Hour)
	if err := env.Quests.Register("quest-2", testCreator, testToken, 100, testVerifier, deadline); !errors.Is(err, ErrPaused) {
		t.Errorf("Register while paused: got %v, want ErrPaused", err)
	}
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); !errors.Is(err, ErrPaused) {
		t.Errorf("Submit while paused: got %v, want ErrPaused", err)
	}
	if err := env.Escrow.Deposit("quest-1", testCreator, testToken, 100); !errors.Is(err, ErrPaused) {
		t.Errorf("Deposit while paused: got %v, want ErrPaused", err)
	}
	if err := env.Payouts.ClaimReward("quest-1", "alice"); !errors.Is(err, ErrPaused) {
		t.Errorf("ClaimReward while paused: got %v, want ErrPaused", err)
	}
	if err := env.Security.AddAdmin(testAdmin, "admin-3"); !errors.Is(err, ErrPaused) {
		t.Errorf("AddAdmin while paused: got %v, want ErrPaused", err)
	}
}

func TestUnpauseProtocol(t *testing.T) {
	env := newTestEnv(t)
	addSecondAdmin(t, env)
	env.registerQuest(t, "quest-1", 1000)

	if err := env.Security.EmergencyPause(testAdmin); err != nil {
		t.Fatalf("EmergencyPause failed: %v", err)
	}

	// One approval is below the threshold of two.
	if err := env.Security.EmergencyApproveUnpause(testAdmin); err != nil {
		t.Fatalf("first approval failed: %v", err)
	}
	if err := env.Security.EmergencyUnpause(testAdmin); !errors.Is(err, ErrInsufficientApprovals) {
		t.Fatalf("unpause below quorum: got %v, want ErrInsufficientApprovals", err)
	}

	if err := env.Security.EmergencyApproveUnpause(testAdmin); !errors.Is(err, ErrAlreadyApproved) {
		t.Errorf("duplicate approval: got %v, want ErrAlreadyApproved", err)
	}

	if err := env.Security.EmergencyApproveUnpause(secondAdmin); err != nil {
		t.Fatalf("second approval failed: %v", err)
	}
	if err := env.Security.EmergencyUnpause(testAdmin); err != nil {
		t.Fatalf("EmergencyUnpause failed: %v", err)
	}
	if env.Security.IsPaused() {
		t.Fatal("still paused after unpause")
	}

	deadline := time.Now().Add(time.Hour)
	if err := env.Quests.Register("quest-2", testCreator, testToken, 100, testVerifier, deadline); err != nil {
		t.Errorf("Register after unpause failed: %v", err)
	}
}

func TestUnpauseTimelock(t *testing.T) {
	env := newTestEnv(t)
	addSecondAdmin(t, env)
	if err := env.Security.SetUnpauseTimelock(testAdmin, 3600); err != nil {
		t.Fatalf("SetUnpauseTimelock failed: %v", err)
	}

	base := time.Now()
	env.setClock(base)

	if err := env.Security.EmergencyPause(testAdmin); err != nil {
		t.Fatalf("EmergencyPause failed: %v", err)
	}
	if err := env.Security.EmergencyApproveUnpause(testAdmin); err != nil {
		t.Fatalf("first approval failed: %v", err)
	}
	if err := env.Security.EmergencyApproveUnpause(secondAdmin); err != nil {
		t.Fatalf("second approval failed: %v", err)
	}

	state, err := env.Security.State()
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state.ScheduledUnpauseAt == nil {
		t.Fatal("timelock not scheduled at quorum")
	}

	if err := env.Security.EmergencyUnpause(testAdmin); !errors.Is(err, ErrTimelockNotExpired) {
		t.Fatalf("unpause inside timelock: got %v, want ErrTimelockNotExpired", err)
	}

	env.setClock(base.Add(time.Hour))
	if err := env.Security.EmergencyUnpause(testAdmin); err != nil {
		t.Fatalf("unpause after timelock failed: %v", err)
	}
	if env.Security.IsPaused() {
		t.Error("still paused after timelocked unpause")
	}
}

func TestUnpauseRoundInvalidation(t *testing.T) {
	env := newTestEnv(t)
	addSecondAdmin(t, env)

	if err := env.Security.EmergencyPause(testAdmin); err != nil {
		t.Fatalf("EmergencyPause failed: %v", err)
	}
	if err := env.Security.EmergencyApproveUnpause(testAdmin); err != nil {
		t.Fatalf("approval failed: %v", err)
	}
	if err := env.Security.EmergencyApproveUnpause(secondAdmin); err != nil {
		t.Fatalf("approval failed: %v", err)
	}
	if err := env.Security.EmergencyUnpause(testAdmin); err != nil {
		t.Fatalf("EmergencyUnpause failed: %v", err)
	}

	// A fresh round: the old approvals no longer count, and the same admins
	// may approve again.
	if err := env.Security.EmergencyPause(testAdmin); err != nil {
		t.Fatalf("second pause failed: %v", err)
	}
	state, _ := env.Security.State()
	if state.UnpauseApprovalCount != 0 || state.UnpauseRound != 1 {
		t.Errorf("round/count = %d/%d, want 1/0", state.UnpauseRound, state.UnpauseApprovalCount)
	}
	if err := env.Security.EmergencyUnpause(testAdmin); !errors.Is(err, ErrInsufficientApprovals) {
		t.Errorf("unpause with stale approvals: got %v, want ErrInsufficientApprovals", err)
	}
	if err := env.Security.EmergencyApproveUnpause(testAdmin); err != nil {
		t.Errorf("re-approval in new round failed: %v", err)
	}
}

func TestEmergencyWithdraw(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Ledger.Mint(env.DB, testToken, TreasuryHolder, 1000); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	// Only usable while paused.
	if err := env.Security.EmergencyWithdraw(testAdmin, testToken, "rescue", 500); !errors.Is(err, ErrPaused) {
		t.Fatalf("withdraw while running: got %v, want ErrPaused", err)
	}

	if err := env.Security.EmergencyPause(testAdmin); err != nil {
		t.Fatalf("EmergencyPause failed: %v", err)
	}
	if err := env.Security.EmergencyWithdraw("stranger", testToken, "rescue", 500); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger withdraw: got %v, want ErrUnauthorized", err)
	}
	if err := env.Security.EmergencyWithdraw(testAdmin, testToken, "rescue", 5000); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("over-withdraw: got %v, want ErrInsufficientBalance", err)
	}
	if err := env.Security.EmergencyWithdraw(testAdmin, testToken, "rescue", 0); !errors.Is(err, ErrInvalidRewardAmount) {
		t.Errorf("zero withdraw: got %v, want ErrInvalidRewardAmount", err)
	}

	if err := env.Security.EmergencyWithdraw(testAdmin, testToken, "rescue", 600); err != nil {
		t.Fatalf("EmergencyWithdraw failed: %v", err)
	}
	if got := env.balance(t, "rescue"); got != 600 {
		t.Errorf("rescue balance = %d, want 600", got)
	}
	if got := env.balance(t, TreasuryHolder); got != 400 {
		t.Errorf("treasury balance = %d, want 400", got)
	}
}

func TestAdminManagement(t *testing.T) {
	env := newTestEnv(t)

	if env.Security.IsAdmin("nobody") {
		t.Error("IsAdmin(nobody) = true")
	}
	if !env.Security.IsAdmin(testAdmin) {
		t.Error("seeded admin not recognized")
	}

	if err := env.Security.AddAdmin("stranger", "x"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-admin AddAdmin: got %v, want ErrUnauthorized", err)
	}
	if err := env.Security.AddAdmin(testAdmin, ""); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("empty address: got %v, want ErrInvalidAddress", err)
	}

	if err := env.Security.AddAdmin(testAdmin, secondAdmin); err != nil {
		t.Fatalf("AddAdmin failed: %v", err)
	}
	if !env.Security.IsAdmin(secondAdmin) {
		t.Error("new admin not recognized")
	}

	if err := env.Security.RemoveAdmin(secondAdmin, testAdmin); err != nil {
		t.Fatalf("RemoveAdmin failed: %v", err)
	}
	if env.Security.IsAdmin(testAdmin) {
		t.Error("removed admin still recognized")
	}
}

func TestGrantBadge(t *testing.T) {
	env := newTestEnv(t)

	if err := env.Progression.GrantBadge("stranger", "alice", models.BadgeRookie); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-admin grant: got %v, want ErrUnauthorized", err)
	}
	if err := env.Progression.GrantBadge(testAdmin, "alice", models.Badge("imaginary")); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("unknown badge: got %v, want ErrInvalidAddress", err)
	}
	if err := env.Progression.GrantBadge(testAdmin, "alice", models.BadgeExplorer); err != nil {
		t.Fatalf("GrantBadge failed: %v", err)
	}

	badges, err := env.Progression.ListBadges("alice")
	if err != nil {
		t.Fatalf("ListBadges failed: %v", err)
	}
	if len(badges) != 1 || badges[0].Badge != models.BadgeExplorer {
		t.Errorf("badges = %v, want one explorer badge", badges)
	}
}

package services

import (
	"errors"
	"testing"

	"earn-quest-service/models"

	"gorm.io/gorm"
)

func TestClaimRewardFullFlow(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 1000)
	env.fundCreator(t, 1000)
	if err := env.Escrow.Deposit("quest-1", testCreator, testToken, 1000); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := env.Submissions.Approve("quest-1", "alice", testVerifier); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if err := env.Payouts.ClaimReward("quest-1", "alice"); err != nil {
		t.Fatalf("ClaimReward failed: %v", err)
	}

	if got := env.balance(t, "alice"); got != 1000 {
		t.Errorf("alice balance = %d, want 1000", got)
	}
	if got := env.balance(t, TreasuryHolder); got != 0 {
		t.Errorf("treasury balance = %d, want 0", got)
	}

	sub, _ := env.Submissions.Get("quest-1", "alice")
	if sub.Status != models.SubmissionStatusPaid {
		t.Errorf("submission status = %s, want paid", sub.Status)
	}

	quest, _ := env.Quests.Get("quest-1")
	if quest.TotalClaims != 1 {
		t.Errorf("total claims = %d, want 1", quest.TotalClaims)
	}

	info, _ := env.Escrow.GetInfo("quest-1")
	if info.TotalPaidOut != 1000 || info.Available() != 0 {
		t.Errorf("escrow paid/available = %d/%d, want 1000/0", info.TotalPaidOut, info.Available())
	}

	stats, _ := env.Stats.GetPlatformStats()
	if stats.TotalRewardsClaimed != 1 || stats.TotalRewardsPaidOut != 1000 {
		t.Errorf("stats = %d claims / %d paid, want 1 / 1000", stats.TotalRewardsClaimed, stats.TotalRewardsPaidOut)
	}

	prog, err := env.Progression.GetProgress("alice")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if prog.XP != ClaimXP || prog.QuestsCompleted != 1 || prog.Level != 1 {
		t.Errorf("progress = %d XP / %d completed / L%d, want %d / 1 / L1", prog.XP, prog.QuestsCompleted, prog.Level, ClaimXP)
	}

	if n := env.countEvents(t, "quest-1", models.EventRewardClaimed); n != 1 {
		t.Errorf("claim events = %d, want 1", n)
	}
}

func TestClaimTwice(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 500)
	env.fundCreator(t, 1000)
	if err := env.Escrow.Deposit("quest-1", testCreator, testToken, 1000); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := env.Submissions.Approve("quest-1", "alice", testVerifier); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if err := env.Payouts.ClaimReward("quest-1", "alice"); err != nil {
		t.Fatalf("first ClaimReward failed: %v", err)
	}

	if err := env.Payouts.ClaimReward("quest-1", "alice"); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("second claim: got %v, want ErrAlreadyClaimed", err)
	}
	if got := env.balance(t, "alice"); got != 500 {
		t.Errorf("alice balance = %d, want 500 (single payout)", got)
	}
}

func TestClaimUnapproved(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 500)
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := env.Payouts.ClaimReward("quest-1", "alice"); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("claiming pending submission: got %v, want ErrInvalidStatusTransition", err)
	}
	if err := env.Payouts.ClaimReward("quest-1", "ghost"); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("claiming without submission: got %v, want ErrSubmissionNotFound", err)
	}
}

func TestClaimWithoutEscrowFallsBackToTreasury(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 800)
	if err := env.Ledger.Mint(env.DB, testToken, TreasuryHolder, 800); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := env.Submissions.Approve("quest-1", "alice", testVerifier); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if err := env.Payouts.ClaimReward("quest-1", "alice"); err != nil {
		t.Fatalf("ClaimReward failed: %v", err)
	}
	if got := env.balance(t, "alice"); got != 800 {
		t.Errorf("alice balance = %d, want 800", got)
	}
}

func TestClaimInsufficientTreasury(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 800)
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := env.Submissions.Approve("quest-1", "alice", testVerifier); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if err := env.Payouts.ClaimReward("quest-1", "alice"); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("empty treasury claim: got %v, want ErrInsufficientBalance", err)
	}

	sub, _ := env.Submissions.Get("quest-1", "alice")
	if sub.Status != models.SubmissionStatusApproved {
		t.Errorf("submission status = %s, want approved (claim must roll back)", sub.Status)
	}
	quest, _ := env.Quests.Get("quest-1")
	if quest.TotalClaims != 0 {
		t.Errorf("total claims = %d, want 0", quest.TotalClaims)
	}
}

// brokenLedger fails every balance read, mimicking a storage fault.
type brokenLedger struct{}

func (brokenLedger) BalanceOf(db *gorm.DB, token, holder string) (int64, error) {
	return 0, errors.New("read token_accounts: connection reset")
}

func (brokenLedger) Transfer(db *gorm.DB, token, from, to string, amount int64) error {
	return errors.New("read token_accounts: connection reset")
}

func TestClaimLedgerFaultMapsToTransferFailed(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 500)
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := env.Submissions.Approve("quest-1", "alice", testVerifier); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	env.Payouts.Assets = brokenLedger{}

	if err := env.Payouts.ClaimReward("quest-1", "alice"); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("claim with faulty ledger: got %v, want ErrTransferFailed", err)
	}

	sub, _ := env.Submissions.Get("quest-1", "alice")
	if sub.Status != models.SubmissionStatusApproved {
		t.Errorf("submission status = %s, want approved (claim must roll back)", sub.Status)
	}
}

func TestClaimXPAccumulates(t *testing.T) {
	env := newTestEnv(t)
	env.fundCreator(t, 300)
	for _, id := range []string{"q-1", "q-2", "q-3"} {
		env.registerQuest(t, id, 100)
		if err := env.Escrow.Deposit(id, testCreator, testToken, 100); err != nil {
			t.Fatalf("Deposit %s failed: %v", id, err)
		}
		if err := env.Submissions.Submit(id, "alice", testProofHash); err != nil {
			t.Fatalf("Submit %s failed: %v", id, err)
		}
		if err := env.Submissions.Approve(id, "alice", testVerifier); err != nil {
			t.Fatalf("Approve %s failed: %v", id, err)
		}
		if err := env.Payouts.ClaimReward(id, "alice"); err != nil {
			t.Fatalf("ClaimReward %s failed: %v", id, err)
		}
	}

	prog, err := env.Progression.GetProgress("alice")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if prog.XP != 300 || prog.Level != 2 || prog.QuestsCompleted != 3 {
		t.Errorf("progress = %d XP / L%d / %d completed, want 300 / L2 / 3", prog.XP, prog.Level, prog.QuestsCompleted)
	}
}

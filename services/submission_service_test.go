package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"earn-quest-service/models"
)

func TestSubmitAndApprove(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 1000)

	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	sub, err := env.Submissions.Get("quest-1", "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sub.Status != models.SubmissionStatusPending {
		t.Errorf("status = %s, want pending", sub.Status)
	}
	if sub.ProofHash != testProofHash {
		t.Errorf("proof hash mismatch")
	}

	if err := env.Submissions.Approve("quest-1", "alice", testVerifier); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	sub, _ = env.Submissions.Get("quest-1", "alice")
	if sub.Status != models.SubmissionStatusApproved {
		t.Errorf("status = %s, want approved", sub.Status)
	}

	if n := env.countEvents(t, "quest-1", models.EventProofSubmitted); n != 1 {
		t.Errorf("proof events = %d, want 1", n)
	}
	if n := env.countEvents(t, "quest-1", models.EventSubmissionApproved); n != 1 {
		t.Errorf("approval events = %d, want 1", n)
	}

	stats, err := env.Stats.GetPlatformStats()
	if err != nil {
		t.Fatalf("GetPlatformStats failed: %v", err)
	}
	if stats.TotalSubmissions != 1 || stats.TotalActiveUsers != 1 {
		t.Errorf("stats = %d submissions / %d users, want 1 / 1", stats.TotalSubmissions, stats.TotalActiveUsers)
	}
}

func TestSubmitDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 1000)

	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	err := env.Submissions.Submit("quest-1", "alice", strings.Repeat("cd", 32))
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("duplicate submission: got %v, want ErrDuplicateSubmission", err)
	}
}

func TestSubmitProofHashValidation(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 1000)

	for _, proof := range []string{
		strings.Repeat("00", 32), // zero hash
		strings.Repeat("ab", 16), // too short
		"not-hex",
		"",
	} {
		if err := env.Submissions.Submit("quest-1", "alice", proof); !errors.Is(err, ErrInvalidProofHash) {
			t.Errorf("proof %q: got %v, want ErrInvalidProofHash", proof, err)
		}
	}
}

func TestSubmitQuestGuards(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 1000)

	if err := env.Submissions.Submit("missing", "alice", testProofHash); !errors.Is(err, ErrQuestNotFound) {
		t.Errorf("missing quest: got %v, want ErrQuestNotFound", err)
	}

	if err := env.Quests.UpdateStatus("quest-1", testCreator, models.QuestStatusPaused); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); !errors.Is(err, ErrQuestNotActive) {
		t.Errorf("paused quest: got %v, want ErrQuestNotActive", err)
	}

	if err := env.Quests.UpdateStatus("quest-1", testCreator, models.QuestStatusActive); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	env.setClock(time.Now().Add(48 * time.Hour))
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); !errors.Is(err, ErrQuestExpired) {
		t.Errorf("past deadline: got %v, want ErrQuestExpired", err)
	}
}

func TestApproveWrongVerifier(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 1000)
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := env.Submissions.Approve("quest-1", "alice", testCreator); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("creator approving: got %v, want ErrUnauthorized", err)
	}
	if err := env.Submissions.Approve("quest-1", "alice", "stranger"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger approving: got %v, want ErrUnauthorized", err)
	}
}

func TestApproveInsufficientEscrow(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 1000)
	env.fundCreator(t, 500)
	if err := env.Escrow.Deposit("quest-1", testCreator, testToken, 500); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	err := env.Submissions.Approve("quest-1", "alice", testVerifier)
	if !errors.Is(err, ErrInsufficientEscrow) {
		t.Fatalf("underfunded approval: got %v, want ErrInsufficientEscrow", err)
	}

	sub, _ := env.Submissions.Get("quest-1", "alice")
	if sub.Status != models.SubmissionStatusPending {
		t.Errorf("status = %s, want pending (approval must roll back)", sub.Status)
	}
}

func TestRejectThenApprove(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 1000)
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := env.Submissions.Reject("quest-1", "alice", testVerifier); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	sub, _ := env.Submissions.Get("quest-1", "alice")
	if sub.Status != models.SubmissionStatusRejected {
		t.Errorf("status = %s, want rejected", sub.Status)
	}

	if err := env.Submissions.Approve("quest-1", "alice", testVerifier); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("approving rejected submission: got %v, want ErrInvalidStatusTransition", err)
	}
}

func TestApproveBatch(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 100)
	env.registerQuest(t, "quest-2", 100)
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := env.Submissions.Submit("quest-2", "bob", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	items := []BatchApprovalInput{
		{QuestID: "quest-1", Submitter: "alice"},
		{QuestID: "quest-2", Submitter: "bob"},
	}
	if err := env.Submissions.ApproveBatch(testVerifier, items); err != nil {
		t.Fatalf("ApproveBatch failed: %v", err)
	}
	for _, item := range items {
		sub, _ := env.Submissions.Get(item.QuestID, item.Submitter)
		if sub.Status != models.SubmissionStatusApproved {
			t.Errorf("%s/%s status = %s, want approved", item.QuestID, item.Submitter, sub.Status)
		}
	}
}

func TestApproveBatchAtomic(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 100)
	if err := env.Submissions.Submit("quest-1", "alice", testProofHash); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	items := []BatchApprovalInput{
		{QuestID: "quest-1", Submitter: "alice"},
		{QuestID: "quest-1", Submitter: "ghost"},
	}
	if err := env.Submissions.ApproveBatch(testVerifier, items); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("batch with missing submission: got %v, want ErrSubmissionNotFound", err)
	}

	sub, _ := env.Submissions.Get("quest-1", "alice")
	if sub.Status != models.SubmissionStatusPending {
		t.Errorf("status = %s, want pending (batch must roll back)", sub.Status)
	}

	oversized := make([]BatchApprovalInput, MaxBatchApprovals+1)
	if err := env.Submissions.ApproveBatch(testVerifier, oversized); !errors.Is(err, ErrArrayTooLong) {
		t.Errorf("oversized batch: got %v, want ErrArrayTooLong", err)
	}
}

func TestListByQuest(t *testing.T) {
	env := newTestEnv(t)
	env.registerQuest(t, "quest-1", 100)
	for _, submitter := range []string{"alice", "bob", "carol"} {
		if err := env.Submissions.Submit("quest-1", submitter, testProofHash); err != nil {
			t.Fatalf("Submit %s failed: %v", submitter, err)
		}
	}

	subs, err := env.Submissions.ListByQuest("quest-1", 0, 10)
	if err != nil {
		t.Fatalf("ListByQuest failed: %v", err)
	}
	if len(subs) != 3 {
		t.Errorf("submissions = %d, want 3", len(subs))
	}
}

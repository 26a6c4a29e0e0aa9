package authflow

import (
	"testing"
	"time"
)

func TestBeginAndGet(t *testing.T) {
	store := NewStore(time.Minute)
	attempt := store.Begin(12, "user@example.com", StepTwoFactorVerify)
	if attempt.ID == "" {
		t.Fatalf("expected attempt id")
	}

	got, ok := store.Get(attempt.ID)
	if !ok {
		t.Fatalf("expected attempt to be found")
	}
	if got.UserID != 12 || got.Email != "user@example.com" {
		t.Fatalf("unexpected attempt payload: %+v", got)
	}
	if got.Step != StepTwoFactorVerify {
		t.Fatalf("expected 2FA_VERIFY step, got %s", got.Step)
	}
}

func TestAdvance(t *testing.T) {
	store := NewStore(time.Minute)
	attempt := store.Begin(3, "user@example.com", StepTwoFactorSetup)

	advanced, ok := store.Advance(attempt.ID, StepTwoFactorVerify)
	if !ok {
		t.Fatalf("expected advance to succeed")
	}
	if advanced.Step != StepTwoFactorVerify {
		t.Fatalf("expected 2FA_VERIFY step, got %s", advanced.Step)
	}

	got, ok := store.Get(attempt.ID)
	if !ok || got.Step != StepTwoFactorVerify {
		t.Fatalf("expected stored step to change, got %+v ok=%v", got, ok)
	}
}

func TestFinishRemovesAttempt(t *testing.T) {
	store := NewStore(time.Minute)
	attempt := store.Begin(1, "user@example.com", StepReset)
	store.Finish(attempt.ID)
	if _, ok := store.Get(attempt.ID); ok {
		t.Fatalf("expected finished attempt to be gone")
	}
}

func TestExpiredAttemptIsRejected(t *testing.T) {
	store := NewStore(time.Millisecond)
	attempt := store.Begin(1, "user@example.com", StepTwoFactorVerify)
	time.Sleep(5 * time.Millisecond)
	if _, ok := store.Get(attempt.ID); ok {
		t.Fatalf("expected expired attempt to be rejected")
	}
	if _, ok := store.Advance(attempt.ID, StepDone); ok {
		t.Fatalf("expected expired attempt to reject advancing")
	}
}

func TestUnknownAttempt(t *testing.T) {
	store := NewStore(time.Minute)
	if _, ok := store.Get("missing"); ok {
		t.Fatalf("expected unknown id to be rejected")
	}
}

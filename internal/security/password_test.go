package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatalf("expected hash to differ from plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Fatalf("expected mismatched password to fail")
	}
}

func TestGenerateTemporaryPassword(t *testing.T) {
	first, err := GenerateTemporaryPassword()
	if err != nil {
		t.Fatalf("GenerateTemporaryPassword returned error: %v", err)
	}
	second, err := GenerateTemporaryPassword()
	if err != nil {
		t.Fatalf("GenerateTemporaryPassword returned error: %v", err)
	}
	if len(first) != 32 {
		t.Fatalf("expected 32 hex characters, got %d", len(first))
	}
	if first == second {
		t.Fatalf("expected distinct temporary passwords")
	}
}

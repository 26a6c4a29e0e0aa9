package security

import (
	"strings"
	"testing"
	"time"

	"github.com/hawktesters/portal/internal/models"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	clientID := uint64(7)
	user := &models.User{
		ID:       42,
		Email:    "analyst@example.com",
		UserType: models.UserTypeClient,
		ClientID: &clientID,
	}

	token, err := NewSessionToken("test-secret", time.Hour, user)
	if err != nil {
		t.Fatalf("NewSessionToken returned error: %v", err)
	}

	claims, err := ParseSessionToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseSessionToken returned error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected uid 42, got %d", claims.UserID)
	}
	if claims.UserType != models.UserTypeClient {
		t.Fatalf("expected CLIENT user type, got %s", claims.UserType)
	}
	if claims.ClientID == nil || *claims.ClientID != 7 {
		t.Fatalf("expected client id 7, got %v", claims.ClientID)
	}
	if claims.Subject != "analyst@example.com" {
		t.Fatalf("expected subject to carry the email, got %q", claims.Subject)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@example.com", UserType: models.UserTypeAdmin}
	token, err := NewSessionToken("secret-a", time.Hour, user)
	if err != nil {
		t.Fatalf("NewSessionToken returned error: %v", err)
	}
	if _, err := ParseSessionToken("secret-b", token); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestSessionTokenExpired(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@example.com", UserType: models.UserTypeTeam}
	token, err := NewSessionToken("secret", time.Millisecond, user)
	if err != nil {
		t.Fatalf("NewSessionToken returned error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := ParseSessionToken("secret", token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestSessionTokenEmptySecret(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@example.com", UserType: models.UserTypeAdmin}
	if _, err := NewSessionToken("  ", time.Hour, user); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestGenerateTOTP(t *testing.T) {
	enrollment, err := GenerateTOTP("analyst@example.com")
	if err != nil {
		t.Fatalf("GenerateTOTP returned error: %v", err)
	}
	if enrollment.Secret == "" {
		t.Fatalf("expected non-empty secret")
	}
	if !strings.HasPrefix(enrollment.OtpauthURL, "otpauth://totp/") {
		t.Fatalf("unexpected provisioning url %q", enrollment.OtpauthURL)
	}
	if !strings.HasPrefix(enrollment.QRDataURL, "data:image/png;base64,") {
		t.Fatalf("unexpected qr data url prefix %q", enrollment.QRDataURL[:32])
	}
	if ValidateTOTP("000000", enrollment.Secret) && ValidateTOTP("123456", enrollment.Secret) {
		t.Fatalf("expected at least one arbitrary code to be rejected")
	}
}

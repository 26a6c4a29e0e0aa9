package mail

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hawktesters/portal/internal/config"
)

func testMailConfig() config.MailConfig {
	return config.MailConfig{
		Host: "localhost",
		Port: 2525,
		From: "portal@example.com",
	}
}

func TestWelcomeTemplate(t *testing.T) {
	var body bytes.Buffer
	err := welcomeTemplate.Execute(&body, welcomeData{
		Name:         "Ada",
		Email:        "ada@example.com",
		SecretLink:   "https://us.onetimesecret.com/secret/abc123",
		SiteURL:      "https://portal.example.com",
		LogoURL:      "https://portal.example.com/logo.png",
		LogoSmallURL: "https://portal.example.com/logo-small.png",
	})
	if err != nil {
		t.Fatalf("template execution failed: %v", err)
	}
	html := body.String()
	for _, want := range []string{
		"Welcome, Ada",
		"ada@example.com",
		"https://us.onetimesecret.com/secret/abc123",
		"https://portal.example.com/logo.png",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
}

func TestWelcomeTemplateEscapesName(t *testing.T) {
	var body bytes.Buffer
	err := welcomeTemplate.Execute(&body, welcomeData{Name: "<script>x</script>", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("template execution failed: %v", err)
	}
	if strings.Contains(body.String(), "<script>") {
		t.Fatalf("expected html in name to be escaped")
	}
}

func TestSendWelcomeEmptyRecipient(t *testing.T) {
	mailer := NewSMTPMailer(testMailConfig())
	if err := mailer.SendWelcome("Ada", "  ", "link"); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}

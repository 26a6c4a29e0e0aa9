// Package mail sends account notification emails over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/hawktesters/portal/internal/config"
)

// Mailer delivers portal notification emails.
type Mailer interface {
	SendWelcome(name, email, secretLink string) error
}

// SMTPMailer sends emails through a configured SMTP relay.
type SMTPMailer struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer constructs an SMTPMailer from config.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f4f4;font-family:Helvetica,Arial,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr>
      <td align="center" style="padding:24px;">
        <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;">
          <tr>
            <td align="center" style="background-color:#101820;padding:24px;">
              <img src="{{.LogoURL}}" alt="logo" height="48" />
            </td>
          </tr>
          <tr>
            <td style="padding:32px;">
              <h2 style="margin-top:0;">Welcome, {{.Name}}</h2>
              <p>An account has been created for you on the client portal.</p>
              <p>Your sign-in email is <strong>{{.Email}}</strong>.</p>
              <p>Use the one-time link below to retrieve your temporary password. The link can only be opened once and expires after a few hours.</p>
              <p style="text-align:center;">
                <a href="{{.SecretLink}}" style="display:inline-block;background-color:#e63946;color:#ffffff;padding:12px 24px;border-radius:4px;text-decoration:none;">Retrieve temporary password</a>
              </p>
              <p>After signing in you will be asked to choose a new password and enroll a two-factor authenticator.</p>
              <p style="text-align:center;"><a href="{{.SiteURL}}">{{.SiteURL}}</a></p>
            </td>
          </tr>
          <tr>
            <td align="center" style="background-color:#f4f4f4;padding:16px;">
              <img src="{{.LogoSmallURL}}" alt="" height="24" />
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

type welcomeData struct {
	Name         string
	Email        string
	SecretLink   string
	SiteURL      string
	LogoURL      string
	LogoSmallURL string
}

// SendWelcome emails a new account its one-time temporary password link.
func (m *SMTPMailer) SendWelcome(name, email, secretLink string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("mail: empty recipient")
	}

	var body bytes.Buffer
	err := welcomeTemplate.Execute(&body, welcomeData{
		Name:         name,
		Email:        email,
		SecretLink:   secretLink,
		SiteURL:      m.cfg.SiteURL,
		LogoURL:      m.cfg.LogoURL,
		LogoSmallURL: m.cfg.LogoSmallURL,
	})
	if err != nil {
		return fmt.Errorf("mail: render welcome email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Welcome to the client portal")
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: send welcome email: %w", err)
	}
	return nil
}

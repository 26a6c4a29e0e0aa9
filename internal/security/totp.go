package security

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/pquerna/otp/totp"
)

// totpIssuer is the provisioning issuer shown in authenticator apps.
const totpIssuer = "Hawktesters Portal"

// TOTPEnrollment holds a freshly generated shared secret and its
// provisioning artifacts.
type TOTPEnrollment struct {
	Secret     string // Base32 shared secret.
	OtpauthURL string // otpauth:// provisioning URL.
	QRDataURL  string // PNG QR code as a data URL for inline display.
}

// GenerateTOTP creates a new TOTP secret for the account and renders its
// provisioning QR code.
func GenerateTOTP(accountEmail string) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("security: generate totp secret: %w", err)
	}

	img, errImg := key.Image(256, 256)
	if errImg != nil {
		return nil, fmt.Errorf("security: render totp qr: %w", errImg)
	}
	var buf bytes.Buffer
	if errEncode := png.Encode(&buf, img); errEncode != nil {
		return nil, fmt.Errorf("security: encode totp qr: %w", errEncode)
	}

	return &TOTPEnrollment{
		Secret:     key.Secret(),
		OtpauthURL: key.URL(),
		QRDataURL:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// ValidateTOTP checks a submitted code against the stored shared secret.
func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}

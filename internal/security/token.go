package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hawktesters/portal/internal/models"
)

// SessionClaims carries the signed session payload: account id, role and
// owning client.
type SessionClaims struct {
	UserID   uint64          `json:"uid"`
	UserType models.UserType `json:"user_type"`
	ClientID *uint64         `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// NewSessionToken mints a signed session token for the given user.
func NewSessionToken(secret string, expiry time.Duration, user *models.User) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("security: empty jwt secret")
	}
	if user == nil {
		return "", fmt.Errorf("security: nil user")
	}
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}

	now := time.Now().UTC()
	claims := SessionClaims{
		UserID:   user.ID,
		UserType: user.UserType,
		ClientID: user.ClientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("security: sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates a session token and returns its claims.
func ParseSessionToken(secret, raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("security: parse session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("security: invalid session token")
	}
	return claims, nil
}

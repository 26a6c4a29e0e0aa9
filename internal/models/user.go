package models

import "time"

// UserType classifies portal accounts and gates navigation/authorization.
type UserType string

// Supported account types.
const (
	UserTypeGeneric UserType = "GENERIC" // Passwordless viewer account.
	UserTypeTeam    UserType = "TEAM"    // Agency team member.
	UserTypeClient  UserType = "CLIENT"  // Client-side account tied to a Client.
	UserTypeAdmin   UserType = "ADMIN"   // Portal administrator.
)

// Valid reports whether the user type is one of the known values.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeGeneric, UserTypeTeam, UserTypeClient, UserTypeAdmin:
		return true
	}
	return false
}

// User represents a portal account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string   `gorm:"type:text"`                      // Display name.
	Email    string   `gorm:"type:text;not null;uniqueIndex"` // Login e-mail, stored lowercase.
	Password *string  `gorm:"type:text"`                      // Bcrypt hash; nil for GENERIC viewers.
	UserType UserType `gorm:"type:text;not null;index"`       // Account role.

	TwoFactorSecret  *string `gorm:"type:text"`              // Confirmed TOTP secret.
	TwoFactorPending *string `gorm:"type:text"`              // Unconfirmed TOTP secret awaiting first valid code.
	TwoFactorEnabled bool    `gorm:"not null;default:false"` // Whether 2FA is confirmed active.
	// FirstTimeLogin forces a password reset before the first session.
	// No column default: gorm substitutes tag defaults for zero-valued
	// fields on create, so an explicit false could never be stored.
	// Create sites set this field themselves.
	FirstTimeLogin bool `gorm:"not null"`

	LastAccess *time.Time // Last successful password reset or sign-in.
	AvatarURL  string     `gorm:"type:text"` // Gravatar-derived avatar URL.

	ClientID *uint64 `gorm:"index"`               // Owning client, for CLIENT accounts.
	Client   *Client `gorm:"foreignKey:ClientID"` // Owning client record.
	CV       *CV     `gorm:"foreignKey:UserID"`   // CV for TEAM accounts.

	Assessments []Assessment `gorm:"many2many:assessment_team_members"` // Assessments this user is assigned to.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

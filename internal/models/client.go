package models

import "time"

// Client represents a customer organization that owns users and assessments.
type Client struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name  string `gorm:"type:text;not null;uniqueIndex"` // Organization name.
	Email string `gorm:"type:text"`                      // Contact e-mail.

	Users       []User       `gorm:"foreignKey:ClientID"` // Client-side accounts.
	Assessments []Assessment `gorm:"foreignKey:ClientID"` // Assessments commissioned by this client.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

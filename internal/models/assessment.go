package models

import "time"

// AssessmentStatus tracks where an engagement sits in its lifecycle.
type AssessmentStatus string

// Supported assessment statuses.
const (
	AssessmentStatusActive     AssessmentStatus = "ACTIVE"
	AssessmentStatusProgrammed AssessmentStatus = "PROGRAMMED"
	AssessmentStatusOnHold     AssessmentStatus = "ON_HOLD"
	AssessmentStatusCompleted  AssessmentStatus = "COMPLETED"
)

// Valid reports whether the status is one of the known values.
func (s AssessmentStatus) Valid() bool {
	switch s {
	case AssessmentStatusActive, AssessmentStatusProgrammed, AssessmentStatusOnHold, AssessmentStatusCompleted:
		return true
	}
	return false
}

// Assessment represents a penetration-testing engagement.
type Assessment struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title    string           `gorm:"type:text;not null;uniqueIndex"` // Engagement title.
	Status   AssessmentStatus `gorm:"type:text;not null;index"`       // Lifecycle status.
	Deadline time.Time        `gorm:"not null"`                       // Delivery deadline.

	ClientID uint64  `gorm:"not null;index"`      // Commissioning client.
	Client   *Client `gorm:"foreignKey:ClientID"` // Commissioning client record.

	TeamMembers   []User         `gorm:"many2many:assessment_team_members"` // Assigned team members.
	UploadedFiles []UploadedFile `gorm:"foreignKey:AssessmentID"`           // Deliverable files by category.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

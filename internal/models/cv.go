package models

import (
	"time"

	"gorm.io/datatypes"
)

// CV holds the public profile of a TEAM user. Child collections are owned
// exclusively and replaced wholesale on update.
type CV struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex"` // Owning TEAM user.
	User   *User  `gorm:"foreignKey:UserID"`    // Owning user record.

	ProfileName         string `gorm:"type:text"` // Name shown on the CV.
	ProfileImage        string `gorm:"type:text"` // Profile image URL.
	Email               string `gorm:"type:text"` // Contact e-mail on the CV.
	JobTitle            string `gorm:"type:text"` // Role headline.
	GreetingTitle       string `gorm:"type:text"` // Intro heading.
	GreetingDescription string `gorm:"type:text"` // Intro paragraph.
	FooterText          string `gorm:"type:text"` // Footer line.

	Languages datatypes.JSON `gorm:"not null;default:'[]'"` // Spoken languages as a JSON string array.
	Interests datatypes.JSON `gorm:"not null;default:'[]'"` // Interests as a JSON string array.

	Education          []Education         `gorm:"foreignKey:CVID"` // Education entries.
	Experience         []Experience        `gorm:"foreignKey:CVID"` // Experience entries.
	Services           []Service           `gorm:"foreignKey:CVID"` // Offered services.
	Achievements       []Achievement       `gorm:"foreignKey:CVID"` // Achievement counters.
	Testimonials       []Testimonial       `gorm:"foreignKey:CVID"` // Quotes.
	UserCertifications []UserCertification `gorm:"foreignKey:CVID"` // Join rows to shared certifications.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Education is a schooling entry on a CV.
type Education struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	CVID        uint64 `gorm:"not null;index"`
	YearRange   string `gorm:"type:text"`
	Title       string `gorm:"type:text;not null"`
	Subtitle    string `gorm:"type:text"`
	Description string `gorm:"type:text"`
}

// Experience is a work history entry on a CV.
type Experience struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	CVID        uint64 `gorm:"not null;index"`
	YearRange   string `gorm:"type:text"`
	Title       string `gorm:"type:text;not null"`
	Subtitle    string `gorm:"type:text"`
	Description string `gorm:"type:text"`
}

// Service is an offered-service entry on a CV.
type Service struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	CVID        uint64 `gorm:"not null;index"`
	Icon        string `gorm:"type:text"`
	Alt         string `gorm:"type:text"`
	Name        string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`
}

// Achievement is a headline counter on a CV.
type Achievement struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	CVID        uint64 `gorm:"not null;index"`
	Icon        string `gorm:"type:text"`
	Value       string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`
}

// Testimonial is a quoted reference on a CV.
type Testimonial struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement"`
	CVID  uint64 `gorm:"not null;index"`
	Quote string `gorm:"type:text;not null"`
	Image string `gorm:"type:text"`
	Name  string `gorm:"type:text"`
}

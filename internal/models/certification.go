package models

import "time"

// Certification is a credential shared across team members.
type Certification struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title string `gorm:"type:text;not null;uniqueIndex"` // Credential name.
	Logo  string `gorm:"type:text"`                      // Logo asset URL.
	Alt   string `gorm:"type:text"`                      // Logo alt text.

	UserCertifications []UserCertification `gorm:"foreignKey:CertificationID"` // Join rows to holder CVs.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// UserCertification links a CV to a shared certification and carries the
// holder's verification URL.
type UserCertification struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CVID uint64 `gorm:"not null;index:idx_user_certifications_cv_cert,unique"` // Holder CV.
	CV   *CV    `gorm:"foreignKey:CVID"`                                       // Holder CV record.

	CertificationID uint64         `gorm:"not null;index:idx_user_certifications_cv_cert,unique"` // Shared credential.
	Certification   *Certification `gorm:"foreignKey:CertificationID"`                            // Shared credential record.

	Href string `gorm:"type:text"` // Per-holder verification link.
}

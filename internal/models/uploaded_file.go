package models

import "time"

// FileCategory tags which document slot a file fills on an assessment.
type FileCategory string

// Supported file categories. The first three are singleton slots per
// assessment; ADDITIONAL_FILE may repeat.
const (
	FileCategoryCertificate     FileCategory = "CERTIFICATE"
	FileCategoryExecutiveReport FileCategory = "EXECUTIVE_REPORT"
	FileCategoryTechnicalReport FileCategory = "TECHNICAL_REPORT"
	FileCategoryAdditionalFile  FileCategory = "ADDITIONAL_FILE"
)

// Valid reports whether the category is one of the known values.
func (c FileCategory) Valid() bool {
	switch c {
	case FileCategoryCertificate, FileCategoryExecutiveReport, FileCategoryTechnicalReport, FileCategoryAdditionalFile:
		return true
	}
	return false
}

// Singleton reports whether at most one file of this category may exist
// per assessment.
func (c FileCategory) Singleton() bool {
	return c == FileCategoryCertificate || c == FileCategoryExecutiveReport || c == FileCategoryTechnicalReport
}

// UploadedFile records metadata for a deliverable stored on local disk.
type UploadedFile struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	FilePath string `gorm:"type:text;not null"`     // Store path as returned by Save, including the upload directory.
	FileName string `gorm:"type:text;not null"`     // Original client-supplied name.
	MimeType string `gorm:"type:text"`              // Declared content type.
	FileSize int64  `gorm:"not null;default:0"`     // Size in bytes as written.
	IsPublic bool   `gorm:"not null;default:false"` // Whether unauthenticated download is allowed.

	Category FileCategory `gorm:"type:text;not null;index"` // Document slot.

	AssessmentID uint64      `gorm:"not null;index"`          // Owning assessment.
	Assessment   *Assessment `gorm:"foreignKey:AssessmentID"` // Owning assessment record.

	UploadedByID uint64 `gorm:"not null;index"`          // Uploading user.
	UploadedBy   *User  `gorm:"foreignKey:UploadedByID"` // Uploading user record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

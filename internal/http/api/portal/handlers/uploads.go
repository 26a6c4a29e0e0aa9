package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hawktesters/portal/internal/models"
	"github.com/hawktesters/portal/internal/storage"
)

// UploadHandler manages deliverable file endpoints.
type UploadHandler struct {
	db    *gorm.DB
	store storage.Store
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(db *gorm.DB, store storage.Store) *UploadHandler {
	return &UploadHandler{db: db, store: store}
}

// Upload stores a multipart file on disk and records its metadata. Singleton
// categories replace any previous file in the same slot.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, errFile := c.FormFile("file")
	if errFile != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	category := models.FileCategory(strings.TrimSpace(c.PostForm("category")))
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	assessmentID, errAssessment := strconv.ParseUint(strings.TrimSpace(c.PostForm("assessmentId")), 10, 64)
	if errAssessment != nil || assessmentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing assessmentId"})
		return
	}
	userID, errUser := strconv.ParseUint(strings.TrimSpace(c.PostForm("userId")), 10, 64)
	if errUser != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing userId"})
		return
	}

	var assessment models.Assessment
	if errFind := h.db.WithContext(c.Request.Context()).First(&assessment, assessmentID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	src, errOpen := fileHeader.Open()
	if errOpen != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer src.Close()

	path, errSave := h.store.Save(fileHeader.Filename, src)
	if errSave != nil {
		log.WithError(errSave).Error("uploads: save file failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store file failed"})
		return
	}

	record := models.UploadedFile{
		FilePath:     path,
		FileName:     fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		FileSize:     fileHeader.Size,
		Category:     category,
		AssessmentID: assessmentID,
		UploadedByID: userID,
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if category.Singleton() {
			var stale []models.UploadedFile
			errStale := tx.Where("assessment_id = ? AND category = ?", assessmentID, category).
				Find(&stale).Error
			if errStale != nil {
				return errStale
			}
			for _, old := range stale {
				if errRemove := h.store.Remove(old.FilePath); errRemove != nil {
					log.WithError(errRemove).Warn("uploads: remove replaced file failed")
				}
			}
			errDelete := tx.Where("assessment_id = ? AND category = ?", assessmentID, category).
				Delete(&models.UploadedFile{}).Error
			if errDelete != nil {
				return errDelete
			}
		}
		return tx.Create(&record).Error
	})
	if errTx != nil {
		if errRemove := h.store.Remove(path); errRemove != nil {
			log.WithError(errRemove).Warn("uploads: cleanup after failed insert failed")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "record file failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           record.ID,
		"fileName":     record.FileName,
		"mimeType":     record.MimeType,
		"fileSize":     record.FileSize,
		"isPublic":     record.IsPublic,
		"category":     record.Category,
		"assessmentId": record.AssessmentID,
	})
}

// Download streams a public file's bytes with its stored MIME type.
func (h *UploadHandler) Download(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("fileId")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var record models.UploadedFile
	if errFind := h.db.WithContext(c.Request.Context()).First(&record, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !record.IsPublic {
		c.JSON(http.StatusForbidden, gin.H{"error": "file is not public"})
		return
	}

	file, errOpen := h.store.Open(record.FilePath)
	if errOpen != nil {
		log.WithError(errOpen).Error("uploads: open stored file failed")
		c.JSON(http.StatusNotFound, gin.H{"error": "file missing"})
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `inline; filename="`+record.FileName+`"`)
	contentType := record.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, record.FileSize, contentType, file, nil)
}

// updateUploadRequest defines the request body for visibility updates.
type updateUploadRequest struct {
	IsPublic *bool `json:"isPublic"`
}

// SetVisibility toggles whether a file can be downloaded without a session.
func (h *UploadHandler) SetVisibility(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("fileId")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateUploadRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.IsPublic == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing isPublic"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.UploadedFile{}).
		Where("id = ?", id).Update("is_public", *body.IsPublic)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a file record. The disk unlink is best-effort so a missing
// file never blocks metadata cleanup.
func (h *UploadHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("fileId")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var record models.UploadedFile
	if errFind := h.db.WithContext(c.Request.Context()).First(&record, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if errRemove := h.store.Remove(record.FilePath); errRemove != nil {
		log.WithError(errRemove).Warn("uploads: remove stored file failed")
	}
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&record).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

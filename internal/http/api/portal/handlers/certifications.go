package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hawktesters/portal/internal/models"
)

// CertificationHandler manages shared certification endpoints.
type CertificationHandler struct {
	db *gorm.DB
}

// NewCertificationHandler constructs a CertificationHandler.
func NewCertificationHandler(db *gorm.DB) *CertificationHandler {
	return &CertificationHandler{db: db}
}

// defaultCertificationAssets derives logo path and alt text from the title
// when they are not supplied.
func defaultCertificationAssets(title, logo, alt string) (string, string) {
	if logo == "" {
		slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "-"))
		logo = "/images/certifications/" + slug + ".png"
	}
	if alt == "" {
		alt = title + " logo"
	}
	return logo, alt
}

func certificationResponse(cert *models.Certification) gin.H {
	return gin.H{
		"id":    cert.ID,
		"title": cert.Title,
		"logo":  cert.Logo,
		"alt":   cert.Alt,
	}
}

// List returns all certifications ordered by title.
func (h *CertificationHandler) List(c *gin.Context) {
	var rows []models.Certification
	errFind := h.db.WithContext(c.Request.Context()).
		Order("title ASC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list certifications failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, certificationResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"certifications": out})
}

// certificationRequest defines the request body for certification creation.
type certificationRequest struct {
	Title string `json:"title"`
	Logo  string `json:"logo"`
	Alt   string `json:"alt"`
}

// Create creates a new shared certification.
func (h *CertificationHandler) Create(c *gin.Context) {
	var body certificationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}
	logo, alt := defaultCertificationAssets(title, strings.TrimSpace(body.Logo), strings.TrimSpace(body.Alt))

	cert := models.Certification{Title: title, Logo: logo, Alt: alt}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&cert).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create certification failed"})
		return
	}
	c.JSON(http.StatusCreated, certificationResponse(&cert))
}

// Get returns a certification by ID.
func (h *CertificationHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var cert models.Certification
	if errFind := h.db.WithContext(c.Request.Context()).First(&cert, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, certificationResponse(&cert))
}

// updateCertificationRequest defines the request body for updates.
type updateCertificationRequest struct {
	Title *string `json:"title"`
	Logo  *string `json:"logo"`
	Alt   *string `json:"alt"`
}

// Update modifies a certification.
func (h *CertificationHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateCertificationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
			return
		}
		updates["title"] = title
	}
	if body.Logo != nil {
		updates["logo"] = strings.TrimSpace(*body.Logo)
	}
	if body.Alt != nil {
		updates["alt"] = strings.TrimSpace(*body.Alt)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Certification{}).
		Where("id = ?", id).Updates(updates)
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

// Delete removes a certification together with its holder links.
func (h *CertificationHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var cert models.Certification
		if errFind := tx.First(&cert, id).Error; errFind != nil {
			return errFind
		}
		errLinks := tx.Where("certification_id = ?", id).
			Delete(&models.UserCertification{}).Error
		if errLinks != nil {
			return errLinks
		}
		return tx.Delete(&cert).Error
	})
	if errTx != nil {
		if errors.Is(errTx, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

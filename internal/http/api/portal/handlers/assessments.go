package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbutil "github.com/hawktesters/portal/internal/db"
	"github.com/hawktesters/portal/internal/models"
)

// AssessmentHandler manages assessment endpoints.
type AssessmentHandler struct {
	db *gorm.DB
}

// NewAssessmentHandler constructs an AssessmentHandler.
func NewAssessmentHandler(db *gorm.DB) *AssessmentHandler {
	return &AssessmentHandler{db: db}
}

func clientSummary(client *models.Client) gin.H {
	if client == nil {
		return nil
	}
	return gin.H{"id": client.ID, "name": client.Name, "email": client.Email}
}

func teamMemberSummaries(users []models.User) []gin.H {
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return out
}

func uploadedFileSummaries(files []models.UploadedFile) []gin.H {
	out := make([]gin.H, 0, len(files))
	for _, f := range files {
		out = append(out, gin.H{
			"id":         f.ID,
			"fileName":   f.FileName,
			"mimeType":   f.MimeType,
			"fileSize":   f.FileSize,
			"isPublic":   f.IsPublic,
			"category":   f.Category,
			"uploadedAt": f.CreatedAt,
		})
	}
	return out
}

func assessmentResponse(a *models.Assessment) gin.H {
	out := gin.H{
		"id":          a.ID,
		"title":       a.Title,
		"status":      a.Status,
		"deadline":    a.Deadline,
		"clientId":    a.ClientID,
		"client":      clientSummary(a.Client),
		"teamMembers": teamMemberSummaries(a.TeamMembers),
		"createdAt":   a.CreatedAt,
		"updatedAt":   a.UpdatedAt,
	}
	if a.UploadedFiles != nil {
		out["uploadedFiles"] = uploadedFileSummaries(a.UploadedFiles)
	}
	return out
}

// List returns a page of assessments with optional title and status filters.
func (h *AssessmentHandler) List(c *gin.Context) {
	page, errPage := strconv.Atoi(c.DefaultQuery("page", "1"))
	if errPage != nil || page < 1 {
		page = 1
	}
	limit, errLimit := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if errLimit != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Assessment{})
	if titleQ := strings.TrimSpace(c.Query("q")); titleQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+titleQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "title"), pattern)
	}
	if statusQ := models.AssessmentStatus(strings.TrimSpace(c.Query("status"))); statusQ != "" {
		if !statusQ.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		q = q.Where("status = ?", statusQ)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	var rows []models.Assessment
	errFind := q.Preload("Client").Preload("TeamMembers").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list assessments failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, assessmentResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"assessments": out, "total": total})
}

// createAssessmentRequest defines the request body for assessment creation.
type createAssessmentRequest struct {
	Title         string   `json:"title"`
	Status        string   `json:"status"`
	Deadline      string   `json:"deadline"`
	ClientID      uint64   `json:"clientId"`
	TeamMemberIDs []uint64 `json:"teamMemberIds"`
}

// loadTeamMembers resolves the referenced user ids, failing if any is
// unknown.
func (h *AssessmentHandler) loadTeamMembers(c *gin.Context, ids []uint64) ([]models.User, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	var members []models.User
	if errFind := h.db.WithContext(c.Request.Context()).Where("id IN ?", ids).Find(&members).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	if len(members) != len(ids) {
		c.JSON(http.StatusNotFound, gin.H{"error": "team member not found"})
		return nil, false
	}
	return members, true
}

// Create creates a new assessment.
func (h *AssessmentHandler) Create(c *gin.Context) {
	var body createAssessmentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}
	status := models.AssessmentStatus(strings.TrimSpace(body.Status))
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	deadline, errDeadline := time.Parse(time.RFC3339, strings.TrimSpace(body.Deadline))
	if errDeadline != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline"})
		return
	}
	if body.ClientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing clientId"})
		return
	}

	var client models.Client
	if errFind := h.db.WithContext(c.Request.Context()).First(&client, body.ClientID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	members, okMembers := h.loadTeamMembers(c, body.TeamMemberIDs)
	if !okMembers {
		return
	}

	assessment := models.Assessment{
		Title:       title,
		Status:      status,
		Deadline:    deadline,
		ClientID:    client.ID,
		TeamMembers: members,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&assessment).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create assessment failed"})
		return
	}
	assessment.Client = &client
	c.JSON(http.StatusCreated, assessmentResponse(&assessment))
}

// Get returns an assessment with its client, team and files.
func (h *AssessmentHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var assessment models.Assessment
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Client").Preload("TeamMembers").Preload("UploadedFiles").
		First(&assessment, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, assessmentResponse(&assessment))
}

// updateAssessmentRequest defines the request body for assessment updates.
type updateAssessmentRequest struct {
	Title         *string   `json:"title"`
	Status        *string   `json:"status"`
	Deadline      *string   `json:"deadline"`
	ClientID      *uint64   `json:"clientId"`
	TeamMemberIDs *[]uint64 `json:"teamMemberIds"`
}

// Update modifies an assessment. A teamMemberIds value replaces the
// assignment set wholesale.
func (h *AssessmentHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateAssessmentRequest
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
	if body.Status != nil {
		status := models.AssessmentStatus(strings.TrimSpace(*body.Status))
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		updates["status"] = status
	}
	if body.Deadline != nil {
		deadline, errDeadline := time.Parse(time.RFC3339, strings.TrimSpace(*body.Deadline))
		if errDeadline != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline"})
			return
		}
		updates["deadline"] = deadline
	}
	if body.ClientID != nil {
		var client models.Client
		if errFind := h.db.WithContext(c.Request.Context()).First(&client, *body.ClientID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		updates["client_id"] = client.ID
	}

	var members []models.User
	if body.TeamMemberIDs != nil {
		loaded, okMembers := h.loadTeamMembers(c, *body.TeamMemberIDs)
		if !okMembers {
			return
		}
		members = loaded
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var assessment models.Assessment
		if errFind := tx.First(&assessment, id).Error; errFind != nil {
			return errFind
		}
		if len(updates) > 0 {
			if errUpdate := tx.Model(&assessment).Updates(updates).Error; errUpdate != nil {
				return errUpdate
			}
		}
		if body.TeamMemberIDs != nil {
			if errReplace := tx.Model(&assessment).Association("TeamMembers").Replace(members); errReplace != nil {
				return errReplace
			}
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an assessment together with its team links and file rows.
func (h *AssessmentHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var assessment models.Assessment
		if errFind := tx.First(&assessment, id).Error; errFind != nil {
			return errFind
		}
		if errClear := tx.Model(&assessment).Association("TeamMembers").Clear(); errClear != nil {
			return errClear
		}
		if errFiles := tx.Where("assessment_id = ?", id).Delete(&models.UploadedFile{}).Error; errFiles != nil {
			return errFiles
		}
		return tx.Delete(&assessment).Error
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

// ListTeam returns the users assigned to an assessment.
func (h *AssessmentHandler) ListTeam(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var assessment models.Assessment
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("TeamMembers").
		First(&assessment, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"teamMembers": teamMemberSummaries(assessment.TeamMembers)})
}

// addTeamMemberRequest defines the request body for assignment creation.
type addTeamMemberRequest struct {
	UserID uint64 `json:"userId"`
}

// AddTeamMember assigns one user to an assessment.
func (h *AssessmentHandler) AddTeamMember(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body addTeamMemberRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing userId"})
		return
	}

	var assessment models.Assessment
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("TeamMembers").
		First(&assessment, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	for _, member := range assessment.TeamMembers {
		if member.ID == body.UserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user already assigned"})
			return
		}
	}

	var user models.User
	if errUser := h.db.WithContext(c.Request.Context()).First(&user, body.UserID).Error; errUser != nil {
		if errors.Is(errUser, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	errAppend := h.db.WithContext(c.Request.Context()).
		Model(&assessment).Association("TeamMembers").Append(&user)
	if errAppend != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assign failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

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

// ClientHandler manages client organization endpoints.
type ClientHandler struct {
	db *gorm.DB
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

func clientResponse(client *models.Client) gin.H {
	out := gin.H{
		"id":        client.ID,
		"name":      client.Name,
		"email":     client.Email,
		"createdAt": client.CreatedAt,
		"updatedAt": client.UpdatedAt,
	}
	if client.Users != nil {
		out["users"] = teamMemberSummaries(client.Users)
	}
	if client.Assessments != nil {
		assessments := make([]gin.H, 0, len(client.Assessments))
		for i := range client.Assessments {
			assessments = append(assessments, assessmentResponse(&client.Assessments[i]))
		}
		out["assessments"] = assessments
	}
	return out
}

// List returns all clients ordered by name.
func (h *ClientHandler) List(c *gin.Context) {
	var rows []models.Client
	errFind := h.db.WithContext(c.Request.Context()).
		Order("name ASC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list clients failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, clientResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

// createClientRequest defines the request body for client creation.
type createClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create creates a new client organization.
func (h *ClientHandler) Create(c *gin.Context) {
	var body createClientRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}

	client := models.Client{
		Name:  name,
		Email: strings.TrimSpace(body.Email),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&client).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create client failed"})
		return
	}
	c.JSON(http.StatusCreated, clientResponse(&client))
}

// Get returns a client with its users and assessments.
func (h *ClientHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var client models.Client
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Users").Preload("Assessments").
		First(&client, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, clientResponse(&client))
}

// updateClientRequest defines the request body for client updates.
type updateClientRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Update modifies a client.
func (h *ClientHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateClientRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
			return
		}
		updates["name"] = name
	}
	if body.Email != nil {
		updates["email"] = strings.TrimSpace(*body.Email)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Client{}).
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

// Delete removes a client. Its accounts are detached rather than removed.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if errFind := tx.First(&client, id).Error; errFind != nil {
			return errFind
		}
		errDetach := tx.Model(&models.User{}).Where("client_id = ?", id).
			Update("client_id", nil).Error
		if errDetach != nil {
			return errDetach
		}
		return tx.Delete(&client).Error
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

// RemoveUser deletes a client-side account owned by the client.
func (h *ClientHandler) RemoveUser(c *gin.Context) {
	clientID, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	userID, errUserParse := strconv.ParseUint(strings.TrimSpace(c.Param("userId")), 10, 64)
	if errUserParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if user.ClientID == nil || *user.ClientID != clientID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user does not belong to client"})
		return
	}

	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&user).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

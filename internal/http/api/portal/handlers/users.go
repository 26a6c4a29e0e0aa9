package handlers

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hawktesters/portal/internal/mail"
	"github.com/hawktesters/portal/internal/models"
	"github.com/hawktesters/portal/internal/secrets"
	"github.com/hawktesters/portal/internal/security"
)

// UserHandler manages account provisioning endpoints.
type UserHandler struct {
	db     *gorm.DB
	sharer secrets.Sharer
	mailer mail.Mailer
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB, sharer secrets.Sharer, mailer mail.Mailer) *UserHandler {
	return &UserHandler{db: db, sharer: sharer, mailer: mailer}
}

// gravatarURL derives the avatar URL for an email address.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}

// createUserRequest defines the request body for account creation.
type createUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	UserType string  `json:"userType"`
	ClientID *uint64 `json:"clientId"`
}

// Create provisions an account: a temporary password is generated, shared
// through a one-time link, stored bcrypt-hashed as the initial password and
// mailed to the new user.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	userType := models.UserType(strings.TrimSpace(body.UserType))
	if !userType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userType"})
		return
	}
	if userType == models.UserTypeClient && (body.ClientID == nil || *body.ClientID == 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing clientId"})
		return
	}

	var existing int64
	errCount := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("email = ?", email).Count(&existing).Error
	if errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	}

	if body.ClientID != nil && *body.ClientID != 0 {
		var client models.Client
		if errFind := h.db.WithContext(c.Request.Context()).First(&client, *body.ClientID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
	}

	tempPassword, errTemp := security.GenerateTemporaryPassword()
	if errTemp != nil {
		log.WithError(errTemp).Error("users: generate temporary password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}
	secretLink, errShare := h.sharer.Share(c.Request.Context(), tempPassword)
	if errShare != nil {
		log.WithError(errShare).Error("users: share temporary password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}
	hash, errHash := security.HashPassword(tempPassword)
	if errHash != nil {
		log.WithError(errHash).Error("users: hash temporary password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}

	user := models.User{
		Name:           strings.TrimSpace(body.Name),
		Email:          email,
		Password:       &hash,
		UserType:       userType,
		ClientID:       body.ClientID,
		AvatarURL:      gravatarURL(email),
		FirstTimeLogin: true,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}

	if errMail := h.mailer.SendWelcome(user.Name, user.Email, secretLink); errMail != nil {
		log.WithError(errMail).Warn("users: send welcome email failed")
	}
	c.JSON(http.StatusCreated, userResponse(&user))
}

// Get returns an account by ID.
func (h *UserHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Client").
		First(&user, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	entry := userResponse(&user)
	entry["client"] = clientSummary(user.Client)
	entry["lastAccess"] = user.LastAccess
	entry["createdAt"] = user.CreatedAt
	c.JSON(http.StatusOK, entry)
}

// Delete removes an account together with its assignments and CV tree.
func (h *UserHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if errFind := tx.First(&user, id).Error; errFind != nil {
			return errFind
		}
		if errClear := tx.Model(&user).Association("Assessments").Clear(); errClear != nil {
			return errClear
		}

		var cv models.CV
		errCV := tx.Where("user_id = ?", id).First(&cv).Error
		if errCV == nil {
			for _, child := range []any{
				&models.Education{}, &models.Experience{}, &models.Service{},
				&models.Achievement{}, &models.Testimonial{}, &models.UserCertification{},
			} {
				if errChild := tx.Where("cv_id = ?", cv.ID).Delete(child).Error; errChild != nil {
					return errChild
				}
			}
			if errDeleteCV := tx.Delete(&cv).Error; errDeleteCV != nil {
				return errDeleteCV
			}
		} else if !errors.Is(errCV, gorm.ErrRecordNotFound) {
			return errCV
		}

		return tx.Delete(&user).Error
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

package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hawktesters/portal/internal/authflow"
	"github.com/hawktesters/portal/internal/config"
	"github.com/hawktesters/portal/internal/models"
	"github.com/hawktesters/portal/internal/security"
)

// SessionCookieName carries the session token for browser clients.
const SessionCookieName = "portal_session"

// AuthHandler manages the multi-step login endpoints.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
	flows  *authflow.Store
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, flows *authflow.Store) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, flows: flows}
}

// userResponse is the account summary returned with a session.
func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"userType":  u.UserType,
		"clientId":  u.ClientID,
		"avatarUrl": u.AvatarURL,
	}
}

func (h *AuthHandler) findUserByEmail(c *gin.Context, email string) (*models.User, bool) {
	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &user, true
}

// loadAttemptUser resolves the account behind a login attempt. An account
// removed mid-attempt invalidates the attempt instead of surfacing an error.
func (h *AuthHandler) loadAttemptUser(c *gin.Context, attempt *authflow.Attempt) (models.User, bool) {
	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).First(&user, attempt.UserID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			h.flows.Finish(attempt.ID)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid attempt"})
			return models.User{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.User{}, false
	}
	return user, true
}

// issueSession mints a session token for the user and sets it as a cookie.
func (h *AuthHandler) issueSession(c *gin.Context, user *models.User) (string, bool) {
	token, errToken := security.NewSessionToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, user)
	if errToken != nil {
		log.WithError(errToken).Error("auth: issue session token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session creation failed"})
		return "", false
	}
	c.SetCookie(SessionCookieName, token, int(h.jwtCfg.Expiry.Seconds()), "/", "", false, true)
	return token, true
}

func (h *AuthHandler) stampLastAccess(c *gin.Context, userID uint64) {
	now := time.Now().UTC()
	if errStamp := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", userID).Update("last_access", now).Error; errStamp != nil {
		log.WithError(errStamp).Warn("auth: stamp last access failed")
	}
}

// checkEmailRequest defines the request body for pre-login type lookup.
type checkEmailRequest struct {
	Email string `json:"email"`
}

// CheckEmail returns the account type for an email so the client can pick
// the right login form.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var body checkEmailRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	user, ok := h.findUserByEmail(c, body.Email)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"userType": user.UserType})
}

// loginRequest defines the request body for the initial credential step.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and either issues a viewer session or starts a
// login attempt that continues through reset or two-factor steps.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	user, ok := h.findUserByEmail(c, body.Email)
	if !ok {
		return
	}

	// Viewer accounts carry no password and get a session straight away.
	if user.UserType == models.UserTypeGeneric {
		token, okToken := h.issueSession(c, user)
		if !okToken {
			return
		}
		h.stampLastAccess(c, user.ID)
		c.JSON(http.StatusOK, gin.H{"token": token, "user": userResponse(user)})
		return
	}

	if user.Password == nil || !security.CheckPassword(*user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if user.FirstTimeLogin {
		attempt := h.flows.Begin(user.ID, user.Email, authflow.StepReset)
		c.JSON(http.StatusOK, gin.H{
			"attemptId":      attempt.ID,
			"state":          attempt.Step,
			"firstTimeLogin": true,
		})
		return
	}

	next := authflow.StepTwoFactorSetup
	if user.TwoFactorEnabled {
		next = authflow.StepTwoFactorVerify
	}
	attempt := h.flows.Begin(user.ID, user.Email, next)
	c.JSON(http.StatusOK, gin.H{"attemptId": attempt.ID, "state": attempt.Step})
}

// passwordResetRequest defines the request body for the forced reset step.
type passwordResetRequest struct {
	AttemptID   string `json:"attemptId"`
	NewPassword string `json:"newPassword"`
}

// PasswordReset replaces the account password during a first-time login and
// advances the attempt to its two-factor step.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var body passwordResetRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(strings.TrimSpace(body.NewPassword)) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password too short"})
		return
	}
	attempt, okAttempt := h.flows.Get(body.AttemptID)
	if !okAttempt || attempt.Step != authflow.StepReset {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid attempt"})
		return
	}

	user, okUser := h.loadAttemptUser(c, attempt)
	if !okUser {
		return
	}

	hash, errHash := security.HashPassword(body.NewPassword)
	if errHash != nil {
		log.WithError(errHash).Error("auth: hash password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password update failed"})
		return
	}
	now := time.Now().UTC()
	errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"password":         hash,
			"first_time_login": false,
			"last_access":      now,
		}).Error
	if errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password update failed"})
		return
	}

	next := authflow.StepTwoFactorSetup
	if user.TwoFactorEnabled {
		next = authflow.StepTwoFactorVerify
	}
	advanced, okAdvance := h.flows.Advance(attempt.ID, next)
	if !okAdvance {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid attempt"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attemptId": advanced.ID, "state": advanced.Step})
}

// storePendingSecret generates a fresh enrollment and records it as the
// user's pending secret. The secret only becomes active after the first
// valid code is verified.
func (h *AuthHandler) storePendingSecret(c *gin.Context, user *models.User) (*security.TOTPEnrollment, bool) {
	enrollment, errGen := security.GenerateTOTP(user.Email)
	if errGen != nil {
		log.WithError(errGen).Error("auth: generate totp enrollment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "two-factor setup failed"})
		return nil, false
	}
	errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("two_factor_pending", enrollment.Secret).Error
	if errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "two-factor setup failed"})
		return nil, false
	}
	return enrollment, true
}

// TwoFactorSetup handles first-time authenticator enrollment inside a login
// attempt. Accounts with a confirmed secret must use the credentialed POST
// variant instead.
func (h *AuthHandler) TwoFactorSetup(c *gin.Context) {
	attemptID := strings.TrimSpace(c.Query("attemptId"))
	attempt, okAttempt := h.flows.Get(attemptID)
	if !okAttempt || attempt.Step != authflow.StepTwoFactorSetup {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid attempt"})
		return
	}
	user, okUser := h.loadAttemptUser(c, attempt)
	if !okUser {
		return
	}
	if user.TwoFactorEnabled || user.TwoFactorSecret != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "two-factor already configured"})
		return
	}

	enrollment, okSecret := h.storePendingSecret(c, &user)
	if !okSecret {
		return
	}
	advanced, okAdvance := h.flows.Advance(attempt.ID, authflow.StepTwoFactorVerify)
	if !okAdvance {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid attempt"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attemptId":  advanced.ID,
		"state":      advanced.Step,
		"qr":         enrollment.QRDataURL,
		"otpauthUrl": enrollment.OtpauthURL,
	})
}

// twoFactorResetRequest defines the request body for re-enrollment.
type twoFactorResetRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TwoFactorSetupReset re-enrolls an authenticator for an account that already
// has one, gated on full credentials.
func (h *AuthHandler) TwoFactorSetupReset(c *gin.Context) {
	var body twoFactorResetRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	user, ok := h.findUserByEmail(c, body.Email)
	if !ok {
		return
	}
	if user.Password == nil || !security.CheckPassword(*user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	enrollment, okSecret := h.storePendingSecret(c, user)
	if !okSecret {
		return
	}
	attempt := h.flows.Begin(user.ID, user.Email, authflow.StepTwoFactorVerify)
	c.JSON(http.StatusOK, gin.H{
		"attemptId":  attempt.ID,
		"state":      attempt.Step,
		"qr":         enrollment.QRDataURL,
		"otpauthUrl": enrollment.OtpauthURL,
	})
}

// twoFactorVerifyRequest defines the request body for the code check step.
type twoFactorVerifyRequest struct {
	AttemptID string `json:"attemptId"`
	Code      string `json:"code"`
}

// TwoFactorVerify checks a TOTP code and completes the login attempt. The
// first valid code against a pending secret confirms the enrollment.
func (h *AuthHandler) TwoFactorVerify(c *gin.Context) {
	var body twoFactorVerifyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	attempt, okAttempt := h.flows.Get(body.AttemptID)
	if !okAttempt || attempt.Step != authflow.StepTwoFactorVerify {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid attempt"})
		return
	}
	user, okUser := h.loadAttemptUser(c, attempt)
	if !okUser {
		return
	}

	code := strings.TrimSpace(body.Code)
	switch {
	case user.TwoFactorPending != nil && security.ValidateTOTP(code, *user.TwoFactorPending):
		errPromote := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{
				"two_factor_secret":  *user.TwoFactorPending,
				"two_factor_pending": nil,
				"two_factor_enabled": true,
			}).Error
		if errPromote != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "two-factor confirmation failed"})
			return
		}
	case user.TwoFactorSecret != nil && security.ValidateTOTP(code, *user.TwoFactorSecret):
		// Confirmed secret, nothing to promote.
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}

	h.flows.Finish(attempt.ID)
	token, okToken := h.issueSession(c, &user)
	if !okToken {
		return
	}
	h.stampLastAccess(c, user.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": userResponse(&user)})
}

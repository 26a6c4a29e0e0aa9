// Package portal wires the HTTP API surface of the client portal.
package portal

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hawktesters/portal/internal/authflow"
	"github.com/hawktesters/portal/internal/config"
	handlers "github.com/hawktesters/portal/internal/http/api/portal/handlers"
	"github.com/hawktesters/portal/internal/mail"
	"github.com/hawktesters/portal/internal/models"
	"github.com/hawktesters/portal/internal/secrets"
	"github.com/hawktesters/portal/internal/security"
	"github.com/hawktesters/portal/internal/storage"
)

// Deps carries the shared services the portal handlers need.
type Deps struct {
	DB     *gorm.DB
	JWT    config.JWTConfig
	Flows  *authflow.Store
	Sharer secrets.Sharer
	Mailer mail.Mailer
	Store  storage.Store
}

// RegisterPortalRoutes registers the portal routes, middleware and handlers.
func RegisterPortalRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api")

	authHandler := handlers.NewAuthHandler(deps.DB, deps.JWT, deps.Flows)
	authGroup := api.Group("/auth")
	authGroup.POST("/check-email", authHandler.CheckEmail)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/password-reset", authHandler.PasswordReset)
	authGroup.GET("/2fa/setup", authHandler.TwoFactorSetup)
	authGroup.POST("/2fa/setup", authHandler.TwoFactorSetupReset)
	authGroup.POST("/2fa/verify", authHandler.TwoFactorVerify)

	uploadHandler := handlers.NewUploadHandler(deps.DB, deps.Store)
	// Public downloads are gated per file, not by session.
	api.GET("/upload/:fileId", uploadHandler.Download)

	authed := api.Group("")
	authed.Use(sessionAuthMiddleware(deps.DB, deps.JWT))

	authed.POST("/upload", uploadHandler.Upload)
	authed.PUT("/upload/:fileId", uploadHandler.SetVisibility)
	authed.DELETE("/upload/:fileId", uploadHandler.Delete)

	assessmentHandler := handlers.NewAssessmentHandler(deps.DB)
	authed.GET("/assessments", assessmentHandler.List)
	authed.POST("/assessments", assessmentHandler.Create)
	authed.GET("/assessments/:id", assessmentHandler.Get)
	authed.PUT("/assessments/:id", assessmentHandler.Update)
	authed.DELETE("/assessments/:id", assessmentHandler.Delete)
	authed.GET("/assessments/:id/team", assessmentHandler.ListTeam)
	authed.POST("/assessments/:id/team", assessmentHandler.AddTeamMember)

	clientHandler := handlers.NewClientHandler(deps.DB)
	authed.GET("/clients", clientHandler.List)
	authed.POST("/clients", clientHandler.Create)
	authed.GET("/clients/:id", clientHandler.Get)
	authed.PUT("/clients/:id", clientHandler.Update)
	authed.DELETE("/clients/:id", clientHandler.Delete)
	authed.DELETE("/clients/:id/users/:userId", clientHandler.RemoveUser)

	certificationHandler := handlers.NewCertificationHandler(deps.DB)
	authed.GET("/certifications", certificationHandler.List)
	authed.POST("/certifications", certificationHandler.Create)
	authed.GET("/certifications/:id", certificationHandler.Get)
	authed.PUT("/certifications/:id", certificationHandler.Update)
	authed.DELETE("/certifications/:id", certificationHandler.Delete)

	teamHandler := handlers.NewTeamHandler(deps.DB)
	authed.GET("/team", teamHandler.List)
	authed.POST("/team", teamHandler.Create)
	authed.GET("/team/:id", teamHandler.Get)
	authed.PUT("/team/:id", teamHandler.Update)

	userHandler := handlers.NewUserHandler(deps.DB, deps.Sharer, deps.Mailer)
	authed.POST("/users", userHandler.Create)
	authed.GET("/users/:id", userHandler.Get)
	authed.DELETE("/users/:id", userHandler.Delete)
}

// sessionAuthMiddleware validates session tokens and loads user context.
// Tokens arrive as a Bearer header or the session cookie.
func sessionAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			trimmed := strings.TrimPrefix(authHeader, "Bearer ")
			if trimmed == authHeader {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
				return
			}
			token = strings.TrimSpace(trimmed)
		} else if cookie, errCookie := c.Cookie(handlers.SessionCookieName); errCookie == nil {
			token = strings.TrimSpace(cookie)
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}

		claims, errJWT := security.ParseSessionToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("userType", user.UserType)
		if user.ClientID != nil {
			c.Set("clientID", *user.ClientID)
		}
		c.Next()
	}
}

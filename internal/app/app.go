// Package app boots the portal server and its supporting services.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/hawktesters/portal/internal/authflow"
	"github.com/hawktesters/portal/internal/config"
	"github.com/hawktesters/portal/internal/db"
	portalapi "github.com/hawktesters/portal/internal/http/api/portal"
	"github.com/hawktesters/portal/internal/mail"
	"github.com/hawktesters/portal/internal/secrets"
	"github.com/hawktesters/portal/internal/storage"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the portal API server with database-backed components.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtConfig, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return errJWT
	}
	mailConfig, errMail := config.LoadMailConfig(configPath)
	if errMail != nil {
		return errMail
	}
	secretsConfig, errSecrets := config.LoadSecretsConfig(configPath)
	if errSecrets != nil {
		return errSecrets
	}
	storageConfig, errStorage := config.LoadStorageConfig(configPath)
	if errStorage != nil {
		return errStorage
	}

	store, errStore := storage.NewDiskStore(storageConfig.UploadDir)
	if errStore != nil {
		return errStore
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	portalapi.RegisterPortalRoutes(engine, portalapi.Deps{
		DB:     conn,
		JWT:    jwtConfig,
		Flows:  authflow.NewStore(authflow.DefaultTTL),
		Sharer: secrets.NewClient(secretsConfig),
		Mailer: mail.NewSMTPMailer(mailConfig),
		Store:  store,
	})

	if port <= 0 {
		port = 8318
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	log.Infof("portal listening on :%d", port)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// corsMiddleware enables permissive CORS for the SPA frontend.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

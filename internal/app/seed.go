package app

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hawktesters/portal/internal/config"
	"github.com/hawktesters/portal/internal/db"
	"github.com/hawktesters/portal/internal/models"
	"github.com/hawktesters/portal/internal/security"
)

// Seed opens the database, runs migrations and creates the initial accounts.
func Seed(cfg config.AppConfig, adminEmail, adminPassword, viewerEmail string) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("migrate database: %w", errMigrate)
	}
	return SeedWithConn(conn, adminEmail, adminPassword, viewerEmail)
}

// SeedWithConn creates the initial admin and viewer accounts. Existing
// accounts with the same email are left untouched.
func SeedWithConn(conn *gorm.DB, adminEmail, adminPassword, viewerEmail string) error {
	if conn == nil {
		return fmt.Errorf("seed: nil connection")
	}
	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
	if adminEmail == "" {
		return fmt.Errorf("seed: admin email is required")
	}
	if strings.TrimSpace(adminPassword) == "" {
		return fmt.Errorf("seed: admin password is required")
	}

	var adminCount int64
	errCount := conn.Model(&models.User{}).Where("email = ?", adminEmail).Count(&adminCount).Error
	if errCount != nil {
		return fmt.Errorf("seed: query admin: %w", errCount)
	}
	if adminCount == 0 {
		hash, errHash := security.HashPassword(adminPassword)
		if errHash != nil {
			return fmt.Errorf("seed: hash admin password: %w", errHash)
		}
		admin := models.User{
			Name:           "Administrator",
			Email:          adminEmail,
			Password:       &hash,
			UserType:       models.UserTypeAdmin,
			FirstTimeLogin: true,
		}
		if errCreate := conn.Create(&admin).Error; errCreate != nil {
			return fmt.Errorf("seed: create admin: %w", errCreate)
		}
	}

	viewerEmail = strings.ToLower(strings.TrimSpace(viewerEmail))
	if viewerEmail == "" {
		return nil
	}
	var viewerCount int64
	errViewer := conn.Model(&models.User{}).Where("email = ?", viewerEmail).Count(&viewerCount).Error
	if errViewer != nil {
		return fmt.Errorf("seed: query viewer: %w", errViewer)
	}
	if viewerCount == 0 {
		viewer := models.User{
			Name:           "Viewer",
			Email:          viewerEmail,
			UserType:       models.UserTypeGeneric,
			FirstTimeLogin: false,
		}
		if errCreate := conn.Create(&viewer).Error; errCreate != nil {
			return fmt.Errorf("seed: create viewer: %w", errCreate)
		}
	}
	return nil
}

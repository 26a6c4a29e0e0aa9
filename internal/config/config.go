package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by the portal.
const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvDBConnection  = "DB_CONNECTION"
	EnvJWTSecret     = "JWT_SECRET"
	EnvJWTExpiry     = "JWT_EXPIRY"
	EnvSMTPHost      = "SMTP_HOST"
	EnvSMTPPort      = "SMTP_PORT"
	EnvSMTPUser      = "SMTP_USER"
	EnvSMTPPassword  = "SMTP_PASSWORD"
	EnvMailFrom      = "MAIL_FROM"
	EnvOTSPassphrase = "OTS_PASSPHRASE"
	EnvSiteURL       = "SITE_URL"
	EnvUploadDir     = "UPLOAD_DIR"
)

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// JWTConfig holds session token secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// MailConfig holds SMTP transport and sender settings.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`

	SiteURL      string `yaml:"site-url"`       // Public portal URL used in e-mails.
	LogoURL      string `yaml:"logo-url"`       // Full-size company logo.
	LogoSmallURL string `yaml:"logo-small-url"` // Header logo.
}

// SecretsConfig holds one-time-secret link settings.
type SecretsConfig struct {
	Passphrase string `yaml:"passphrase"`
	BaseURL    string `yaml:"base-url"`
}

// StorageConfig holds upload storage settings.
type StorageConfig struct {
	UploadDir string `yaml:"upload-dir"`
}

// LoadDatabaseDSN reads the database DSN from env or the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 12 * time.Hour

// LoadJWTConfig loads session token settings from the YAML config file
// with env overrides.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// LoadMailConfig loads SMTP settings from the YAML config file with env
// overrides.
func LoadMailConfig(configPath string) (MailConfig, error) {
	// fileConfig maps the YAML fields needed for mail settings.
	type fileConfig struct {
		Mail MailConfig `yaml:"mail"`
	}

	var result MailConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Mail
		}
	}

	if host := strings.TrimSpace(os.Getenv(EnvSMTPHost)); host != "" {
		result.Host = host
	}
	if portRaw := strings.TrimSpace(os.Getenv(EnvSMTPPort)); portRaw != "" {
		if port, errParse := strconv.Atoi(portRaw); errParse == nil && port > 0 {
			result.Port = port
		}
	}
	if user := strings.TrimSpace(os.Getenv(EnvSMTPUser)); user != "" {
		result.Username = user
	}
	if pass := os.Getenv(EnvSMTPPassword); pass != "" {
		result.Password = pass
	}
	if from := strings.TrimSpace(os.Getenv(EnvMailFrom)); from != "" {
		result.From = from
	}
	if site := strings.TrimSpace(os.Getenv(EnvSiteURL)); site != "" {
		result.SiteURL = site
	}

	if result.Port <= 0 {
		result.Port = 587
	}
	return result, nil
}

// LoadSecretsConfig loads one-time-secret settings from the YAML config
// file with env overrides.
func LoadSecretsConfig(configPath string) (SecretsConfig, error) {
	// fileConfig maps the YAML fields needed for secret link settings.
	type fileConfig struct {
		Secrets SecretsConfig `yaml:"secrets"`
	}

	var result SecretsConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Secrets
		}
	}

	if passphrase := os.Getenv(EnvOTSPassphrase); passphrase != "" {
		result.Passphrase = passphrase
	}
	if result.BaseURL == "" {
		result.BaseURL = "https://us.onetimesecret.com"
	}
	return result, nil
}

// LoadStorageConfig loads upload storage settings from the YAML config
// file with env overrides.
func LoadStorageConfig(configPath string) (StorageConfig, error) {
	// fileConfig maps the YAML fields needed for storage settings.
	type fileConfig struct {
		Storage StorageConfig `yaml:"storage"`
	}

	var result StorageConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Storage
		}
	}

	if dir := strings.TrimSpace(os.Getenv(EnvUploadDir)); dir != "" {
		result.UploadDir = dir
	}
	if result.UploadDir == "" {
		result.UploadDir = filepath.Join("assets", "uploads")
	}
	return result, nil
}

package db

import (
	"fmt"

	"github.com/hawktesters/portal/internal/models"
	"gorm.io/gorm"
)

// migratedModels lists every table in dependency order.
var migratedModels = []any{
	&models.Client{},
	&models.User{},
	&models.Assessment{},
	&models.UploadedFile{},
	&models.CV{},
	&models.Education{},
	&models.Experience{},
	&models.Service{},
	&models.Achievement{},
	&models.Testimonial{},
	&models.Certification{},
	&models.UserCertification{},
}

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

// migratePostgres applies PostgreSQL-specific schema updates and indexes.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(migratedModels...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	_ = conn.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_assessments_client_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_assessments_client_id_created_at
				ON assessments (client_id, created_at DESC)
			`,
		},
		{
			name: "idx_assessments_status_deadline",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_assessments_status_deadline
				ON assessments (status, deadline ASC)
			`,
		},
		{
			name: "idx_uploaded_files_assessment_category",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_uploaded_files_assessment_category
				ON uploaded_files (assessment_id, category)
			`,
		},
		{
			name: "idx_users_client_id_user_type",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_users_client_id_user_type
				ON users (client_id, user_type)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	// trgmIndex defines trigram and fallback index statements.
	type trgmIndex struct {
		name     string // Logical index name.
		trgmSQL  string // Trigram index SQL.
		lowerSQL string // Lowercase fallback index SQL.
	}
	trgmIndexes := []trgmIndex{
		{
			name: "idx_users_email",
			trgmSQL: `
				CREATE INDEX IF NOT EXISTS idx_users_email_trgm
				ON users USING gin (email gin_trgm_ops)
			`,
			lowerSQL: `
				CREATE INDEX IF NOT EXISTS idx_users_email_lower
				ON users (LOWER(email))
			`,
		},
		{
			name: "idx_assessments_title",
			trgmSQL: `
				CREATE INDEX IF NOT EXISTS idx_assessments_title_trgm
				ON assessments USING gin (title gin_trgm_ops)
			`,
			lowerSQL: `
				CREATE INDEX IF NOT EXISTS idx_assessments_title_lower
				ON assessments (LOWER(title))
			`,
		},
		{
			name: "idx_clients_name",
			trgmSQL: `
				CREATE INDEX IF NOT EXISTS idx_clients_name_trgm
				ON clients USING gin (name gin_trgm_ops)
			`,
			lowerSQL: `
				CREATE INDEX IF NOT EXISTS idx_clients_name_lower
				ON clients (LOWER(name))
			`,
		},
	}
	for _, item := range trgmIndexes {
		if errIdx := conn.Exec(item.trgmSQL).Error; errIdx != nil {
			if errLower := conn.Exec(item.lowerSQL).Error; errLower != nil {
				return fmt.Errorf("db: create index %s: %w", item.name, errLower)
			}
		}
	}

	return nil
}

// migrateSQLite applies SQLite-specific schema updates and indexes.
func migrateSQLite(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(migratedModels...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_assessments_client_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_assessments_client_id_created_at
				ON assessments (client_id, created_at DESC)
			`,
		},
		{
			name: "idx_uploaded_files_assessment_category",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_uploaded_files_assessment_category
				ON uploaded_files (assessment_id, category)
			`,
		},
		{
			name: "idx_users_client_id_user_type",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_users_client_id_user_type
				ON users (client_id, user_type)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}

package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	accountRepo "github.com/narwhalmedia/classifieds/internal/account/repository"
	listingRepo "github.com/narwhalmedia/classifieds/internal/listing/repository"
	referenceRepo "github.com/narwhalmedia/classifieds/internal/reference/repository"
	reportRepo "github.com/narwhalmedia/classifieds/internal/report/repository"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/repository"
)

// Migration represents an applied database migration
type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// MigrationFunc is a function that performs a migration
type MigrationFunc func(*gorm.DB) error

// MigrationEntry represents a single migration
type MigrationEntry struct {
	Version string
	Name    string
	Up      MigrationFunc
}

// Migrator handles database migrations
type Migrator struct {
	db         *gorm.DB
	logger     interfaces.Logger
	migrations []MigrationEntry
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *gorm.DB, logger interfaces.Logger) *Migrator {
	return &Migrator{
		db:         db,
		logger:     logger,
		migrations: getAllMigrations(),
	}
}

// Migrate runs all pending migrations
func (m *Migrator) Migrate() error {
	if err := m.db.AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		return err
	}

	for _, migration := range pending {
		m.logger.Info("Running migration",
			interfaces.String("version", migration.Version),
			interfaces.String("name", migration.Name))

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&Migration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}
	}

	if len(pending) > 0 {
		m.logger.Info("Migrations applied", interfaces.Int("count", len(pending)))
	}
	return nil
}

// GetPendingMigrations returns a list of pending migrations
func (m *Migrator) GetPendingMigrations() ([]MigrationEntry, error) {
	if !m.db.Migrator().HasTable(&Migration{}) {
		return m.migrations, nil
	}

	var appliedMigrations []Migration
	if err := m.db.Find(&appliedMigrations).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	applied := make(map[string]bool, len(appliedMigrations))
	for _, migration := range appliedMigrations {
		applied[migration.Version] = true
	}

	var pending []MigrationEntry
	for _, migration := range m.migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// getAllMigrations returns all migrations in order
func getAllMigrations() []MigrationEntry {
	return []MigrationEntry{
		{
			Version: "20250101_001",
			Name:    "Create initial schema",
			Up:      migration001CreateInitialSchema,
		},
		{
			Version: "20250101_002",
			Name:    "Add indexes for feed and moderation queries",
			Up:      migration002AddIndexes,
		},
		{
			Version: "20250101_003",
			Name:    "Add post state constraints",
			Up:      migration003AddConstraints,
		},
		{
			Version: "20250101_004",
			Name:    "Create post report queue",
			Up:      migration004CreateReports,
		},
	}
}

func isPostgres(tx *gorm.DB) bool {
	return tx.Dialector.Name() == "postgres"
}

// migration001CreateInitialSchema creates the tables
func migration001CreateInitialSchema(tx *gorm.DB) error {
	if err := tx.AutoMigrate(
		&referenceRepo.State{},
		&referenceRepo.District{},
		&referenceRepo.Taluka{},
		&referenceRepo.Village{},
		&referenceRepo.Category{},
		&referenceRepo.SubCategory{},
	); err != nil {
		return fmt.Errorf("failed to migrate reference models: %w", err)
	}

	if err := tx.AutoMigrate(&accountRepo.User{}); err != nil {
		return fmt.Errorf("failed to migrate user models: %w", err)
	}

	if err := tx.AutoMigrate(&listingRepo.Post{}, &repository.ModerationLog{}); err != nil {
		return fmt.Errorf("failed to migrate post models: %w", err)
	}

	return nil
}

// migration002AddIndexes adds composite indexes for the feed sorts
func migration002AddIndexes(tx *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_posts_status_created ON posts(status, created_at DESC, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_posts_status_views ON posts(status, view_count DESC)",
		"CREATE INDEX IF NOT EXISTS idx_posts_user_status ON posts(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_sub_categories_category_order ON sub_categories(category_id, sort_order)",
	}

	if isPostgres(tx) {
		if err := tx.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
			return fmt.Errorf("failed to create pg_trgm extension: %w", err)
		}
		indexes = append(indexes,
			"CREATE INDEX IF NOT EXISTS idx_posts_title_trgm ON posts USING gin(LOWER(title) gin_trgm_ops)",
		)
	}

	for _, index := range indexes {
		if err := tx.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// migration003AddConstraints enforces the post state invariants in the
// store. SQLite cannot add constraints to existing tables; there the
// lifecycle engine is the only guard.
func migration003AddConstraints(tx *gorm.DB) error {
	if !isPostgres(tx) {
		return nil
	}

	constraints := []string{
		"ALTER TABLE posts ADD CONSTRAINT chk_posts_featured_approved CHECK (NOT is_featured OR status = 'approved')",
		"ALTER TABLE posts ADD CONSTRAINT chk_posts_rejection_reason CHECK (status <> 'rejected' OR rejection_reason <> '')",
		"ALTER TABLE posts ADD CONSTRAINT chk_posts_status CHECK (status IN ('pending', 'approved', 'rejected', 'deleted'))",
		"ALTER TABLE users ADD CONSTRAINT chk_users_status CHECK (status IN ('active', 'inactive', 'banned'))",
		"ALTER TABLE sub_categories ADD CONSTRAINT unique_subcategory_name UNIQUE (category_id, name)",
	}

	for _, constraint := range constraints {
		if err := tx.Exec(constraint).Error; err != nil {
			if !isConstraintExistsError(err) {
				return fmt.Errorf("failed to add constraint: %w", err)
			}
		}
	}
	return nil
}

// migration004CreateReports adds the post report queue
func migration004CreateReports(tx *gorm.DB) error {
	if err := tx.AutoMigrate(&reportRepo.Report{}); err != nil {
		return fmt.Errorf("failed to migrate report models: %w", err)
	}
	if err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_post_reports_status_created ON post_reports(status, created_at, id)").Error; err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !isPostgres(tx) {
		return nil
	}
	err := tx.Exec("ALTER TABLE post_reports ADD CONSTRAINT chk_post_reports_status CHECK (status IN ('pending', 'reviewed', 'resolved'))").Error
	if err != nil && !isConstraintExistsError(err) {
		return fmt.Errorf("failed to add constraint: %w", err)
	}
	return nil
}

// isConstraintExistsError checks if the error is due to constraint already existing
func isConstraintExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate key")
}

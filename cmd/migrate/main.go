package main

import (
	"flag"
	"fmt"

	"gorm.io/gorm"

	"github.com/narwhalmedia/classifieds/pkg/config"
	"github.com/narwhalmedia/classifieds/pkg/database"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/logger"
)

func main() {
	var (
		status = flag.Bool("status", false, "Show migration status")
		dryRun = flag.Bool("dry-run", false, "Show pending migrations without applying them")
	)
	flag.Parse()

	// Same sources as the portal: config files, then PORTAL_ env vars.
	cfg := config.MustLoadServiceConfig("portal", config.GetDefaultPortalConfig())

	zl, err := cfg.Logger.ToLoggerConfig(cfg.Service).Build()
	if err != nil {
		panic(err)
	}
	defer func() { _ = zl.Sync() }()
	log := zl.WithFields(logger.String("command", "migrate"))

	db, err := database.NewGormDB(cfg.Database.ToDatabaseConfig(), log)
	if err != nil {
		log.Fatal("Failed to connect to database", logger.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	migrator := database.NewMigrator(db, log)

	switch {
	case *status:
		showMigrationStatus(db, migrator, log)
	case *dryRun:
		showPendingMigrations(migrator, log)
	default:
		runMigrations(migrator, log)
	}
}

// runMigrations applies all pending migrations
func runMigrations(m *database.Migrator, log interfaces.Logger) {
	fmt.Println("Running database migrations...")

	if err := m.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", logger.Error(err))
	}

	fmt.Println("Migrations completed successfully!")
}

// showMigrationStatus displays the current migration status
func showMigrationStatus(db *gorm.DB, m *database.Migrator, log interfaces.Logger) {
	var applied []database.Migration
	if db.Migrator().HasTable(&database.Migration{}) {
		if err := db.Order("applied_at DESC").Find(&applied).Error; err != nil {
			log.Fatal("Failed to get migrations", logger.Error(err))
		}
	}

	if len(applied) == 0 {
		fmt.Println("No migrations have been applied yet.")
	} else {
		fmt.Println("Applied migrations:")
		fmt.Println("==================")
		for _, a := range applied {
			fmt.Printf("%s | %s | Applied at: %s\n", a.Version, a.Name, a.AppliedAt.Format("2006-01-02 15:04:05"))
		}
	}

	showPendingMigrations(m, log)
}

// showPendingMigrations displays migrations that would be applied
func showPendingMigrations(m *database.Migrator, log interfaces.Logger) {
	pending, err := m.GetPendingMigrations()
	if err != nil {
		log.Fatal("Failed to get pending migrations", logger.Error(err))
	}

	if len(pending) == 0 {
		fmt.Println("\nAll migrations are up to date!")
		return
	}

	fmt.Println("\nPending migrations:")
	fmt.Println("==================")
	for _, p := range pending {
		fmt.Printf("%s | %s\n", p.Version, p.Name)
	}
}

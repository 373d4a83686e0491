package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/narwhalmedia/classifieds/pkg/database"
	"github.com/narwhalmedia/classifieds/pkg/logger"
)

// NewTestDB creates a migrated in-memory SQLite database. It is closed when
// the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	log := logger.NewNoop()
	db, err := database.NewGormDB(&database.Config{
		Driver:   "sqlite",
		Path:     ":memory:",
		LogLevel: gormlogger.Silent,
	}, log)
	require.NoError(t, err)

	require.NoError(t, database.NewMigrator(db, log).Migrate())

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

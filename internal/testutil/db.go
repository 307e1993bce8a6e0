package testutil

import (
	"path/filepath"
	"testing"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logging"

	"gorm.io/gorm"
)

// NewDB returns a migrated sqlite database in a per-test temp dir.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    filepath.Join(t.TempDir(), "test.db"),
	}
	logger := logging.Discard()

	db, err := database.Open(cfg, logger)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(db, logger); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

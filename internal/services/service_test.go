package services

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/routinely/routinely/internal/models"
)

// openTestDB returns an isolated in-file SQLite database in a temp directory.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Group{},
		&models.Person{},
		&models.Routine{},
		&models.Task{},
		&models.RoutineAssignment{},
		&models.TaskCompletion{},
		&models.Condition{},
		&models.CoParent{},
		&models.CoTeacher{},
		&models.PersonSharingConnection{},
		&models.ShareInvite{},
		&models.VisibilityOverride{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

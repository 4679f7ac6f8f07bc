package db

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/routinely/routinely/internal/models"
)

var conn *gorm.DB

func Init() error {
	var err error
	conn, err = gorm.Open(sqlite.Open("routinely.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	// AutoMigrate core tables
	if err := conn.AutoMigrate(
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
		log.Fatalf("auto-migrate failed: %v", err)
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_cond_routine_status ON conditions(routine_id, status)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_share_role_status   ON person_sharing_connections(role_id, status)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_completion_person   ON task_completions(person_id, completed_at)")

	log.Println("database ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}

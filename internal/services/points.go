package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/routinely/routinely/internal/models"
)

// AwardCompletion records a task completion for a person and credits the
// task's points, atomically. roleID is 0 for kiosk completions.
func AwardCompletion(gdb *gorm.DB, task models.Task, personID, roleID uint, now time.Time) (models.TaskCompletion, error) {
	completion := models.TaskCompletion{
		TaskID:      task.ID,
		PersonID:    personID,
		RoleID:      roleID,
		Points:      task.Points,
		CompletedAt: now,
	}
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}
		return tx.Model(&models.Person{}).
			Where("id = ?", personID).
			UpdateColumn("points", gorm.Expr("points + ?", task.Points)).Error
	})
	return completion, err
}

// RecomputePersonPoints rebuilds a person's points total from their
// completion history. Used after completions are deleted or edited.
func RecomputePersonPoints(gdb *gorm.DB, personID uint) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		return RecomputePersonPointsTx(tx, personID)
	})
}

// RecomputePersonPointsTx does the same as RecomputePersonPoints but
// inside an existing TX.
func RecomputePersonPointsTx(tx *gorm.DB, personID uint) error {
	var total int64
	err := tx.Model(&models.TaskCompletion{}).
		Where("person_id = ?", personID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Person{}).
		Where("id = ?", personID).
		UpdateColumn("points", total).Error
}

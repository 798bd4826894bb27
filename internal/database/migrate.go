package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// ActiveAttemptIndex is the partial unique index guarding in-progress attempts.
const ActiveAttemptIndex = "idx_attempt_in_progress"

// Migrate creates or updates every table owned by the portal.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Association{},
		&models.User{},
		&models.RefreshToken{},
		&models.Counter{},
		&models.Exam{},
		&models.ExamQuestion{},
		&models.ExamAttempt{},
		&models.ExamResult{},
		&models.Payment{},
		&models.AuditLog{},
		&models.Announcement{},
		&models.GalleryItem{},
		&models.BlogPost{},
		&models.HomepageSection{},
		&models.Advertisement{},
		&models.MediaAsset{},
		&models.Camp{},
		&models.CampRegistration{},
	); err != nil {
		return err
	}

	// At most one in-progress attempt per user and exam.
	return db.Exec(fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON exam_attempts (user_id, exam_id) WHERE status = '%s'",
		ActiveAttemptIndex, models.AttemptStatusInProgress,
	)).Error
}

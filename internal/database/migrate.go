package database

import (
	"gorm.io/gorm"

	"github.com/mealmind/mealmind-backend/internal/models"
)

// RunMigrations applies the schema for all models this service owns.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.DailyProgress{},
		&models.NutritionGoal{},
		&models.NutritionAnalysisRecord{},
		&models.NotificationSetting{},
		&models.ScheduledNotification{},
		&models.NotificationLog{},
		&models.UserDevice{},
	)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyProgress is the per-user, per-day rollup of logged nutrients. One row
// per (user, date); totals only ever grow within a day and a new day starts a
// new row. Rows are never deleted, they simply stop being today.
type DailyProgress struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	UserID      uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_date" json:"user_id"`
	Date        string    `gorm:"size:10;not null;uniqueIndex:idx_progress_user_date" json:"date"`
	Calories    float64   `gorm:"not null;default:0" json:"calories"`
	Protein     float64   `gorm:"not null;default:0" json:"protein"`
	Carbs       float64   `gorm:"not null;default:0" json:"carbs"`
	Fat         float64   `gorm:"not null;default:0" json:"fat"`
	MealsLogged int       `gorm:"not null;default:0" json:"meals_logged"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (DailyProgress) TableName() string {
	return "daily_progress"
}

// ProgressDelta carries the macro amounts observed by a single analysis.
// Values are always >= 0; the merge adds them field-wise and bumps the meal
// counter by one.
type ProgressDelta struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

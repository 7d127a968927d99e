package models

import (
	"time"

	"github.com/google/uuid"
)

// Goal sources.
const (
	GoalSourceCustom = "custom"
	GoalSourceAI     = "ai"
)

// NutritionGoal is one version in a user's append-only goal log. Rows are
// never updated in place; a change inserts a new row with a later start date
// and resolution picks the most recently started row whose window contains
// the query time.
type NutritionGoal struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"user_id"`
	DailyCalories float64    `gorm:"not null" json:"daily_calories"`
	DailyProtein  float64    `gorm:"not null" json:"daily_protein"`
	DailyCarbs    float64    `gorm:"not null" json:"daily_carbs"`
	DailyFat      float64    `gorm:"not null" json:"daily_fat"`
	Source        string     `gorm:"size:10;not null;default:'custom'" json:"source"`
	StartDate     time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Contains reports whether t falls inside the goal's validity window. A nil
// end date means the window is open-ended.
func (g *NutritionGoal) Contains(t time.Time) bool {
	if t.Before(g.StartDate) {
		return false
	}
	if g.EndDate != nil && t.After(*g.EndDate) {
		return false
	}
	return true
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Meal types accepted by the analysis and reminder pipelines.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// ValidMealType reports whether s is one of the four known meal types.
func ValidMealType(s string) bool {
	switch s {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// NutritionAnalysisRecord is the immutable audit row written once per
// successful analysis. It is never updated or deleted by this service.
type NutritionAnalysisRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Date      string    `gorm:"size:10;not null;index" json:"date"`
	MealType  string    `gorm:"size:10;not null" json:"meal_type"`
	FoodName  string    `gorm:"size:255" json:"food_name"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	// Payload holds the full structured analysis as returned to the client.
	Payload string `gorm:"type:text" json:"-"`
	// ImageKey is the S3 object key of the archived meal photo, empty for
	// text analyses or when archival failed.
	ImageKey  string    `gorm:"size:255" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

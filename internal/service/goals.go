package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealmind/mealmind-backend/internal/models"
)

// Fallback daily targets used whenever no stored goal row is valid.
const (
	DefaultDailyCalories = 2000
	DefaultDailyProtein  = 50
	DefaultDailyCarbs    = 225
	DefaultDailyFat      = 65
)

// GoalService resolves a user's daily nutrition targets from an append-only
// version log. Goal rows are never updated in place; a change appends a row
// with a later start date and resolution picks the most recently started row
// whose validity window contains the query time.
type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

// DefaultGoals returns the fixed fallback targets.
func DefaultGoals(userID uuid.UUID) *models.NutritionGoal {
	return &models.NutritionGoal{
		UserID:        userID,
		DailyCalories: DefaultDailyCalories,
		DailyProtein:  DefaultDailyProtein,
		DailyCarbs:    DefaultDailyCarbs,
		DailyFat:      DefaultDailyFat,
		Source:        models.GoalSourceCustom,
	}
}

// EffectiveGoals returns the goal row in effect at the given time, falling
// back to the fixed defaults when no row exists or the most recent row's
// window excludes the query time. Store errors also fall back; the read path
// never propagates an error.
func (s *GoalService) EffectiveGoals(ctx context.Context, userID uuid.UUID, at time.Time) *models.NutritionGoal {
	var goal models.NutritionGoal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ?", userID, at).
		Order("start_date DESC").
		First(&goal).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[GoalService] goal lookup failed for user %s: %v", userID, err)
		}
		return DefaultGoals(userID)
	}
	if !goal.Contains(at) {
		return DefaultGoals(userID)
	}
	return &goal
}

// SetCustomGoals appends a new custom goal version effective immediately.
func (s *GoalService) SetCustomGoals(ctx context.Context, userID uuid.UUID, calories, protein, carbs, fat float64) (*models.NutritionGoal, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	goal := models.NutritionGoal{
		UserID:        userID,
		DailyCalories: calories,
		DailyProtein:  protein,
		DailyCarbs:    carbs,
		DailyFat:      fat,
		Source:        models.GoalSourceCustom,
		StartDate:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// GoalProfile carries the inputs for the AI goal calculation.
type GoalProfile struct {
	Age           int
	Gender        string // "male" | "female"
	WeightKg      float64
	HeightCm      float64
	ActivityLevel string
	HealthGoal    string // "maintain" | "lose" | "gain"
}

var activityFactors = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"super_active":      1.9,
}

// Macro percentage split per health goal: protein, carbs, fat.
var macroSplits = map[string][3]float64{
	"maintain": {0.25, 0.45, 0.30},
	"lose":     {0.35, 0.35, 0.30},
	"gain":     {0.30, 0.45, 0.25},
}

// CalculateGoals computes daily targets from a profile using the
// Mifflin-St Jeor equation. The calculation is pure: same profile in, same
// targets out, no I/O.
func CalculateGoals(p GoalProfile) models.NutritionGoal {
	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	factor, ok := activityFactors[p.ActivityLevel]
	if !ok {
		factor = activityFactors["sedentary"]
	}
	calories := bmr * factor

	switch p.HealthGoal {
	case "lose":
		calories *= 0.85
	case "gain":
		calories *= 1.15
	}
	calories = math.Round(calories)

	split, ok := macroSplits[p.HealthGoal]
	if !ok {
		split = macroSplits["maintain"]
	}

	return models.NutritionGoal{
		DailyCalories: calories,
		DailyProtein:  math.Round(calories * split[0] / 4),
		DailyCarbs:    math.Round(calories * split[1] / 4),
		DailyFat:      math.Round(calories * split[2] / 9),
		Source:        models.GoalSourceAI,
	}
}

// CalculateAndStoreGoals computes AI goals for the profile and appends them
// as a new version effective immediately.
func (s *GoalService) CalculateAndStoreGoals(ctx context.Context, userID uuid.UUID, p GoalProfile) (*models.NutritionGoal, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	goal := CalculateGoals(p)
	goal.UserID = userID
	goal.StartDate = time.Now()
	if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListGoalVersions returns the user's goal history, newest first.
func (s *GoalService) ListGoalVersions(ctx context.Context, userID uuid.UUID) ([]models.NutritionGoal, error) {
	var goals []models.NutritionGoal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&goals).Error
	return goals, err
}

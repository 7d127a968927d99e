package types

// AnalyzeRequest represents the request body for a nutrition analysis call.
// Payload is free text for kind "text" or base64 image data for kind "image".
type AnalyzeRequest struct {
	Kind     string `json:"kind" binding:"required,oneof=text image"`
	MealType string `json:"meal_type" binding:"required,oneof=breakfast lunch dinner snack"`
	Payload  string `json:"payload" binding:"required"`
}

// SetGoalsRequest represents the request body for custom daily targets.
type SetGoalsRequest struct {
	DailyCalories float64 `json:"daily_calories" binding:"required,gt=0"`
	DailyProtein  float64 `json:"daily_protein" binding:"required,gt=0"`
	DailyCarbs    float64 `json:"daily_carbs" binding:"required,gt=0"`
	DailyFat      float64 `json:"daily_fat" binding:"required,gt=0"`
}

// CalculateGoalsRequest carries the profile inputs for AI goal calculation.
type CalculateGoalsRequest struct {
	Age           int     `json:"age" binding:"required,gt=0"`
	Gender        string  `json:"gender" binding:"required,oneof=male female"`
	WeightKg      float64 `json:"weight_kg" binding:"required,gt=0"`
	HeightCm      float64 `json:"height_cm" binding:"required,gt=0"`
	ActivityLevel string  `json:"activity_level" binding:"required,oneof=sedentary lightly_active moderately_active very_active super_active"`
	HealthGoal    string  `json:"health_goal" binding:"required,oneof=maintain lose gain"`
}

// UpdateNotificationSettingRequest updates one meal reminder slot.
type UpdateNotificationSettingRequest struct {
	MealType string `json:"meal_type" binding:"required,oneof=breakfast lunch dinner snack"`
	Hour     int    `json:"hour" binding:"min=0,max=23"`
	Minute   int    `json:"minute" binding:"min=0,max=59"`
	Active   *bool  `json:"active" binding:"required"`
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealmind/mealmind-backend/internal/models"
)

// Coarse day periods.
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"
	PeriodNight     = "night"
)

// DayPeriod classifies a local hour into a coarse period.
func DayPeriod(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 17:
		return PeriodAfternoon
	case hour >= 17 && hour < 22:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// MealContext derives the finer meal label from a local hour.
func MealContext(hour int) string {
	switch {
	case hour >= 5 && hour < 7:
		return "early breakfast"
	case hour >= 7 && hour < 10:
		return "breakfast"
	case hour >= 10 && hour < 12:
		return "mid-morning snack"
	case hour >= 12 && hour < 14:
		return "lunch"
	case hour >= 14 && hour < 17:
		return "afternoon snack"
	case hour >= 17 && hour < 19:
		return "early dinner"
	case hour >= 19 && hour < 22:
		return "dinner"
	default:
		return "late-night snack"
	}
}

// Canned reminder pools used when the model is unavailable or errors. The
// entry is picked by the current minute so successive fallbacks vary.
var fallbackMessages = map[string][]string{
	PeriodMorning: {
		"Good morning! A solid breakfast sets up your whole day.",
		"Start the day strong: log your breakfast and keep the streak going.",
		"Morning fuel matters. What's on your plate today?",
	},
	PeriodAfternoon: {
		"Halfway through the day. A balanced lunch keeps the energy up.",
		"Don't skip lunch! Your goals will thank you.",
		"Afternoon check-in: log your meal and see how today is shaping up.",
	},
	PeriodEvening: {
		"Dinner time! Round out your macros for the day.",
		"Evenings are for good food. Log your dinner when you're done.",
		"Almost there. A mindful dinner closes the day right.",
	},
	PeriodNight: {
		"Late bite? Logging it keeps tomorrow honest.",
		"A light snack is fine. Make it count toward your goals.",
		"Winding down? Tomorrow's breakfast reminder is already set.",
	},
}

// FallbackMessage picks a canned message for the period, varied by minute.
func FallbackMessage(period string, minute int) string {
	pool, ok := fallbackMessages[period]
	if !ok {
		pool = fallbackMessages[PeriodNight]
	}
	return pool[minute%len(pool)]
}

const reminderSystemPrompt = `You write one-sentence meal reminder notifications for a nutrition tracking app. Be warm and specific, never preachy. Reply with the sentence only, no quotes.`

// Default reminder slots created at registration.
var defaultReminderSlots = []struct {
	mealType string
	hour     int
	minute   int
	active   bool
}{
	{models.MealBreakfast, 8, 0, true},
	{models.MealLunch, 12, 30, true},
	{models.MealDinner, 19, 0, true},
	{models.MealSnack, 16, 0, false},
}

// Fixed local times for the daily progress-check triggers.
var progressCheckSlots = [][2]int{{12, 30}, {20, 30}}

// NotificationService generates reminder content and maintains each user's
// registered triggers.
type NotificationService struct {
	db        *gorm.DB
	llm       LLMClient
	progress  *ProgressService
	goals     *GoalService
	limiter   *RateLimiter
	tz        *TimezoneResolver
	scheduler Scheduler
}

func NewNotificationService(db *gorm.DB, llm LLMClient, progress *ProgressService, goals *GoalService, limiter *RateLimiter, tz *TimezoneResolver, scheduler Scheduler) *NotificationService {
	return &NotificationService{
		db:        db,
		llm:       llm,
		progress:  progress,
		goals:     goals,
		limiter:   limiter,
		tz:        tz,
		scheduler: scheduler,
	}
}

// EnsureDefaultSettings creates the default reminder slots for users that
// have none yet. Existing settings are left untouched.
func (s *NotificationService) EnsureDefaultSettings(ctx context.Context, userID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.NotificationSetting{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, slot := range defaultReminderSlots {
		setting := models.NotificationSetting{
			UserID:   userID,
			MealType: slot.mealType,
			Hour:     slot.hour,
			Minute:   slot.minute,
			Active:   slot.active,
		}
		if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListSettings returns the user's reminder settings.
func (s *NotificationService) ListSettings(ctx context.Context, userID uuid.UUID) ([]models.NotificationSetting, error) {
	if err := s.EnsureDefaultSettings(ctx, userID); err != nil {
		return nil, err
	}
	var settings []models.NotificationSetting
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("hour ASC, minute ASC").Find(&settings).Error
	return settings, err
}

// UpdateSetting mutates one meal slot's time and active flag.
func (s *NotificationService) UpdateSetting(ctx context.Context, userID uuid.UUID, mealType string, hour, minute int, active bool) (*models.NotificationSetting, error) {
	if !models.ValidMealType(mealType) {
		return nil, ErrInvalidMealType
	}
	if err := s.EnsureDefaultSettings(ctx, userID); err != nil {
		return nil, err
	}
	var setting models.NotificationSetting
	if err := s.db.WithContext(ctx).Where("user_id = ? AND meal_type = ?", userID, mealType).First(&setting).Error; err != nil {
		return nil, err
	}
	setting.Hour = hour
	setting.Minute = minute
	setting.Active = active
	if err := s.db.WithContext(ctx).Save(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// GenerateContent produces the reminder body for one slot. The second return
// is false when generation was suppressed by the rate limit; the caller must
// skip that slot entirely rather than treat it as an error.
func (s *NotificationService) GenerateContent(ctx context.Context, userID uuid.UUID, mealType string, localNow time.Time, progress *models.DailyProgress, goals *models.NutritionGoal) (string, bool) {
	period := DayPeriod(localNow.Hour())
	mealCtx := MealContext(localNow.Hour())

	if s.limiter != nil {
		allowed, _, _, err := s.limiter.Allow(ctx, userID.String())
		if err != nil {
			log.Printf("[NotificationService] rate limit check failed for user %s: %v", userID, err)
			// Treat a limiter outage as suppression; generating unbounded
			// content is worse than skipping a reminder.
			allowed = false
		}
		if !allowed {
			s.recordLog(ctx, userID, models.TriggerMealReminder, mealType, "", models.NotificationSuppressed)
			return "", false
		}
	}

	body := ""
	status := models.NotificationFallback
	if s.llm != nil {
		prompt := fmt.Sprintf(
			"It is %s (%s) for this user. Today so far: %d meals logged, %.0f of %.0f kcal, %.0fg of %.0fg protein. Write a %s reminder.",
			mealCtx, period,
			progress.MealsLogged,
			progress.Calories, goals.DailyCalories,
			progress.Protein, goals.DailyProtein,
			mealType,
		)
		reply, err := s.llm.Complete(ctx, reminderSystemPrompt, prompt, false)
		if err != nil {
			log.Printf("[NotificationService] content generation failed for user %s: %v", userID, err)
		} else if reply != "" {
			body = reply
			status = models.NotificationGenerated
		}
	}
	if body == "" {
		body = FallbackMessage(period, localNow.Minute())
	}

	s.recordLog(ctx, userID, models.TriggerMealReminder, mealType, body, status)
	return body, true
}

// ScheduleReminders recomputes and re-registers all of the user's triggers:
// one daily trigger per active meal slot plus the fixed progress checks.
// Previously registered triggers for this user are cancelled first.
func (s *NotificationService) ScheduleReminders(ctx context.Context, userID uuid.UUID) ([]models.ScheduledNotification, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	loc := s.tz.Resolve(ctx, user.Location)
	localNow := time.Now().In(loc)

	if err := s.EnsureDefaultSettings(ctx, userID); err != nil {
		return nil, err
	}
	var settings []models.NotificationSetting
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&settings).Error; err != nil {
		return nil, err
	}

	today := DateKey(localNow)
	progress := s.progress.Get(ctx, userID, today)
	goals := s.goals.EffectiveGoals(ctx, userID, localNow)

	if err := s.scheduler.CancelUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to cancel existing triggers: %w", err)
	}

	var registered []models.ScheduledNotification
	for _, setting := range settings {
		if !setting.Active {
			continue
		}
		body, ok := s.GenerateContent(ctx, userID, setting.MealType, localNow, progress, goals)
		if !ok {
			continue
		}
		utcHour, utcMinute := toUTCClock(localNow, loc, setting.Hour, setting.Minute)
		n := models.ScheduledNotification{
			UserID:   userID,
			Kind:     models.TriggerMealReminder,
			MealType: setting.MealType,
			Hour:     utcHour,
			Minute:   utcMinute,
			Title:    reminderTitle(setting.MealType),
			Body:     body,
		}
		if err := s.scheduler.RegisterDaily(ctx, &n); err != nil {
			return nil, fmt.Errorf("failed to register %s trigger: %w", setting.MealType, err)
		}
		registered = append(registered, n)
	}

	for _, slot := range progressCheckSlots {
		utcHour, utcMinute := toUTCClock(localNow, loc, slot[0], slot[1])
		n := models.ScheduledNotification{
			UserID: userID,
			Kind:   models.TriggerProgressCheck,
			Hour:   utcHour,
			Minute: utcMinute,
			Title:  "Progress check",
			Body: fmt.Sprintf("%d meals logged, %.0f kcal so far. Open the app for the full picture.",
				progress.MealsLogged, progress.Calories),
		}
		if err := s.scheduler.RegisterDaily(ctx, &n); err != nil {
			return nil, fmt.Errorf("failed to register progress check: %w", err)
		}
		registered = append(registered, n)
	}

	return registered, nil
}

// ListScheduled returns the user's currently registered triggers.
func (s *NotificationService) ListScheduled(ctx context.Context, userID uuid.UUID) ([]models.ScheduledNotification, error) {
	return s.scheduler.ListUser(ctx, userID)
}

func reminderTitle(mealType string) string {
	switch mealType {
	case models.MealBreakfast:
		return "Breakfast time"
	case models.MealLunch:
		return "Lunch time"
	case models.MealDinner:
		return "Dinner time"
	default:
		return "Snack break"
	}
}

// toUTCClock converts a local wall-clock slot to the UTC hour/minute the
// dispatcher fires on, using the zone's offset on the reference day.
func toUTCClock(ref time.Time, loc *time.Location, hour, minute int) (int, int) {
	local := time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, loc)
	utc := local.UTC()
	return utc.Hour(), utc.Minute()
}

func (s *NotificationService) recordLog(ctx context.Context, userID uuid.UUID, kind, mealType, body, status string) {
	entry := models.NotificationLog{
		UserID:   userID,
		Kind:     kind,
		MealType: mealType,
		Body:     body,
		Status:   status,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("[NotificationService] history insert failed for user %s: %v", userID, err)
	}
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mealmind/mealmind-backend/internal/models"
)

// ProgressService maintains the per-user, per-day nutrient rollup. The
// durable table is authoritative; a Redis hash mirrors each day's totals for
// fast client reads. Both tiers are updated with atomic increments so
// overlapping analyses from the same user cannot lose updates.
type ProgressService struct {
	db       *gorm.DB
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewProgressService creates a ProgressService. redisClient may be nil, in
// which case the cache mirror is skipped.
func NewProgressService(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration) *ProgressService {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &ProgressService{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

// DateKey formats t as the calendar-date key used for rollup rows.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func progressCacheKey(userID uuid.UUID, date string) string {
	return fmt.Sprintf("user:%s:progress:%s", userID, date)
}

// Merge adds delta to the user's rollup for the given date and bumps the
// meal counter by one. The durable upsert uses a server-side additive update
// (`col = col + excluded.col`) so concurrent merges serialize in the store
// rather than racing in the application tier. The returned progress is read
// back after the merge.
func (s *ProgressService) Merge(ctx context.Context, userID uuid.UUID, date string, delta models.ProgressDelta) (*models.DailyProgress, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	row := models.DailyProgress{
		UserID:      userID,
		Date:        date,
		Calories:    delta.Calories,
		Protein:     delta.Protein,
		Carbs:       delta.Carbs,
		Fat:         delta.Fat,
		MealsLogged: 1,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"calories":     gorm.Expr("daily_progress.calories + excluded.calories"),
			"protein":      gorm.Expr("daily_progress.protein + excluded.protein"),
			"carbs":        gorm.Expr("daily_progress.carbs + excluded.carbs"),
			"fat":          gorm.Expr("daily_progress.fat + excluded.fat"),
			"meals_logged": gorm.Expr("daily_progress.meals_logged + 1"),
			"updated_at":   time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to merge daily progress: %w", err)
	}

	// Write-through mirror. Failures here are logged and swallowed; the
	// durable row already holds the truth.
	if s.redis != nil {
		key := progressCacheKey(userID, date)
		pipe := s.redis.Pipeline()
		pipe.HIncrByFloat(ctx, key, "calories", delta.Calories)
		pipe.HIncrByFloat(ctx, key, "protein", delta.Protein)
		pipe.HIncrByFloat(ctx, key, "carbs", delta.Carbs)
		pipe.HIncrByFloat(ctx, key, "fat", delta.Fat)
		pipe.HIncrBy(ctx, key, "meals_logged", 1)
		pipe.Expire(ctx, key, s.cacheTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[ProgressService] cache mirror update failed for %s: %v", key, err)
		}
	}

	var merged models.DailyProgress
	if err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&merged).Error; err != nil {
		return nil, fmt.Errorf("failed to read back daily progress: %w", err)
	}
	return &merged, nil
}

// Get returns the rollup for the given day. Missing rows and store errors
// both yield a zeroed progress so dashboards always have something to render.
func (s *ProgressService) Get(ctx context.Context, userID uuid.UUID, date string) *models.DailyProgress {
	var row models.DailyProgress
	err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&row).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("[ProgressService] read failed for user %s date %s: %v", userID, date, err)
		}
		return &models.DailyProgress{UserID: userID, Date: date}
	}
	return &row
}

package service_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmind/mealmind-backend/internal/mocks"
	"github.com/mealmind/mealmind-backend/internal/models"
	"github.com/mealmind/mealmind-backend/internal/service"
	"github.com/mealmind/mealmind-backend/internal/testhelpers"
)

func TestMergeMirrorsToCache(t *testing.T) {
	redisClient := testhelpers.SetupRedis(t)
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProgressService(db, redisClient, time.Hour)
	userID := uuid.New()
	date := service.DateKey(time.Now())
	ctx := context.Background()

	_, err := svc.Merge(ctx, userID, date, models.ProgressDelta{Calories: 350, Protein: 20, Carbs: 40, Fat: 12})
	require.NoError(t, err)
	_, err = svc.Merge(ctx, userID, date, models.ProgressDelta{Calories: 150, Protein: 10, Carbs: 20, Fat: 8})
	require.NoError(t, err)

	// The cache hash mirrors the durable totals.
	key := "user:" + userID.String() + ":progress:" + date
	fields, err := redisClient.HGetAll(ctx, key).Result()
	require.NoError(t, err)

	calories, err := strconv.ParseFloat(fields["calories"], 64)
	require.NoError(t, err)
	meals, err := strconv.Atoi(fields["meals_logged"])
	require.NoError(t, err)

	stored := svc.Get(ctx, userID, date)
	assert.Equal(t, stored.Calories, calories)
	assert.Equal(t, stored.MealsLogged, meals)

	ttl, err := redisClient.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestAnalyzeCacheHitSkipsModel(t *testing.T) {
	redisClient := testhelpers.SetupRedis(t)
	db := testhelpers.SetupTestDatabase(t)
	llm := &mocks.LLMClient{Reply: validAnalysisReply}
	progress := service.NewProgressService(db, nil, time.Hour)
	svc := service.NewAnalysisService(db, redisClient, llm, progress, nil, time.Hour)
	userID := uuid.New()
	ctx := context.Background()

	payload := "cache hit bowl " + uuid.NewString()

	_, first, err := svc.Analyze(ctx, userID, service.AnalysisKindText, models.MealLunch, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, llm.Calls)
	assert.Equal(t, 1, first.MealsLogged)

	// The repeated submission is served from cache but still merges.
	_, second, err := svc.Analyze(ctx, userID, service.AnalysisKindText, models.MealDinner, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, llm.Calls)
	assert.Equal(t, 2, second.MealsLogged)
	assert.Equal(t, 700.0, second.Calories)
}

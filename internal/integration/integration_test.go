package integration

import (
	"context"
	"sync"
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

// Concurrent merges against the same (user, date) row must not lose
// updates. This is the production path: the additive upsert serializes in
// PostgreSQL, not in application code.
func TestConcurrentMergesLoseNothing(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	svc := service.NewProgressService(db, nil, time.Hour)
	userID := uuid.New()
	date := service.DateKey(time.Now())
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Merge(ctx, userID, date, models.ProgressDelta{
				Calories: 100, Protein: 10, Carbs: 15, Fat: 5,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	final := svc.Get(ctx, userID, date)
	assert.Equal(t, float64(workers*100), final.Calories)
	assert.Equal(t, float64(workers*10), final.Protein)
	assert.Equal(t, float64(workers*15), final.Carbs)
	assert.Equal(t, float64(workers*5), final.Fat)
	assert.Equal(t, workers, final.MealsLogged)
}

func TestAnalysisPipelineOnPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	llm := &mocks.LLMClient{Reply: `{
        "analysis_type": "text",
        "basic_info": {"food_name": "overnight oats", "portion_size": "1 jar"},
        "nutritional_content": {
            "calories": 420,
            "macronutrients": {
                "protein": {"amount": 18, "unit": "g"},
                "carbs": {"amount": 60, "unit": "g"},
                "fat": {"amount": 11, "unit": "g"}
            }
        }
    }`}
	progress := service.NewProgressService(db, nil, time.Hour)
	svc := service.NewAnalysisService(db, nil, llm, progress, nil, time.Hour)
	userID := uuid.New()
	ctx := context.Background()

	analysis, merged, err := svc.Analyze(ctx, userID, service.AnalysisKindText, models.MealBreakfast, "overnight oats with berries")
	require.NoError(t, err)
	assert.Equal(t, "overnight oats", analysis.BasicInfo.FoodName)
	assert.Equal(t, 420.0, merged.Calories)

	records, err := svc.History(ctx, userID, service.DateKey(time.Now()))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.MealBreakfast, records[0].MealType)
}

func TestGoalVersioningOnPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	svc := service.NewGoalService(db)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.SetCustomGoals(ctx, userID, 1900, 130, 190, 60)
	require.NoError(t, err)
	_, err = svc.CalculateAndStoreGoals(ctx, userID, service.GoalProfile{
		Age:           30,
		Gender:        "male",
		WeightKg:      70,
		HeightCm:      175,
		ActivityLevel: "moderately_active",
		HealthGoal:    "maintain",
	})
	require.NoError(t, err)

	effective := svc.EffectiveGoals(ctx, userID, time.Now().Add(time.Minute))
	assert.Equal(t, 2594.0, effective.DailyCalories)
	assert.Equal(t, models.GoalSourceAI, effective.Source)

	versions, err := svc.ListGoalVersions(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

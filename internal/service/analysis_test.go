package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmind/mealmind-backend/internal/mocks"
	"github.com/mealmind/mealmind-backend/internal/models"
	"github.com/mealmind/mealmind-backend/internal/service"
	"github.com/mealmind/mealmind-backend/internal/testhelpers"
	"gorm.io/gorm"
)

const validAnalysisReply = `Here is the breakdown you asked for:
{
    "analysis_type": "text",
    "basic_info": {
        "food_name": "chicken burrito bowl",
        "portion_size": "1 bowl {large}"
    },
    "nutritional_content": {
        "calories": 350,
        "macronutrients": {
            "protein": {"amount": 20, "unit": "g"},
            "carbs": {"amount": 40, "unit": "g"},
            "fat": {"amount": 12, "unit": "g"}
        }
    }
}
Enjoy your meal!`

func newAnalysisService(db *gorm.DB, llm service.LLMClient) *service.AnalysisService {
	progress := service.NewProgressService(db, nil, time.Hour)
	return service.NewAnalysisService(db, nil, llm, progress, nil, time.Hour)
}

func TestParseAnalysisExtractsEmbeddedObject(t *testing.T) {
	analysis, err := service.ParseAnalysis(validAnalysisReply)
	require.NoError(t, err)
	assert.Equal(t, "chicken burrito bowl", analysis.BasicInfo.FoodName)
	assert.Equal(t, "1 bowl {large}", analysis.BasicInfo.PortionSize)
	assert.Equal(t, 350.0, analysis.NutritionalContent.Calories)
	assert.Equal(t, 20.0, analysis.NutritionalContent.Macronutrients.Protein.Amount)

	delta := analysis.Delta()
	assert.Equal(t, 350.0, delta.Calories)
	assert.Equal(t, 20.0, delta.Protein)
	assert.Equal(t, 40.0, delta.Carbs)
	assert.Equal(t, 12.0, delta.Fat)
}

func TestParseAnalysisRejectsMalformedReplies(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no json at all", "I'm sorry, I cannot analyze that."},
		{"unbalanced object", `{"analysis_type": "text", "basic_info": {`},
		{"missing analysis_type", `{"basic_info": {}, "nutritional_content": {}}`},
		{"missing basic_info", `{"analysis_type": "text", "nutritional_content": {}}`},
		{"missing nutritional_content", `{"analysis_type": "text", "basic_info": {}}`},
		{"array instead of object", `["analysis_type", "basic_info"]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.ParseAnalysis(tc.raw)
			assert.ErrorIs(t, err, service.ErrMalformedResponse)
		})
	}
}

func TestAnalyzeMergesProgressAndRecordsHistory(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	llm := &mocks.LLMClient{Reply: validAnalysisReply}
	svc := newAnalysisService(db, llm)
	userID := uuid.New()
	ctx := context.Background()

	analysis, progress, err := svc.Analyze(ctx, userID, service.AnalysisKindText, models.MealLunch, "chicken burrito bowl")
	require.NoError(t, err)
	assert.Equal(t, service.AnalysisKindText, analysis.AnalysisType)
	assert.Equal(t, 350.0, progress.Calories)
	assert.Equal(t, 1, progress.MealsLogged)

	// A second submission merges on top of the first.
	_, progress, err = svc.Analyze(ctx, userID, service.AnalysisKindText, models.MealDinner, "chicken burrito bowl")
	require.NoError(t, err)
	assert.Equal(t, 700.0, progress.Calories)
	assert.Equal(t, 2, progress.MealsLogged)

	records, err := svc.History(ctx, userID, service.DateKey(time.Now()))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.MealLunch, records[0].MealType)
	assert.Equal(t, "chicken burrito bowl", records[0].FoodName)
	// Text analyses archive no image, so no link is presigned.
	assert.Empty(t, records[0].ImageKey)
	assert.Empty(t, records[0].ImageURL)
}

func TestAnalyzeMalformedReplyHasNoSideEffects(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	llm := &mocks.LLMClient{Reply: "I'm sorry, I cannot analyze that."}
	svc := newAnalysisService(db, llm)
	progress := service.NewProgressService(db, nil, time.Hour)
	userID := uuid.New()
	ctx := context.Background()
	today := service.DateKey(time.Now())

	_, _, err := svc.Analyze(ctx, userID, service.AnalysisKindText, models.MealLunch, "mystery stew")
	assert.ErrorIs(t, err, service.ErrMalformedResponse)

	assert.Zero(t, progress.Get(ctx, userID, today).Calories)
	assert.Zero(t, progress.Get(ctx, userID, today).MealsLogged)

	records, err := svc.History(ctx, userID, today)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAnalyzeValidatesInput(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	llm := &mocks.LLMClient{Reply: validAnalysisReply}
	svc := newAnalysisService(db, llm)
	ctx := context.Background()

	_, _, err := svc.Analyze(ctx, uuid.Nil, service.AnalysisKindText, models.MealLunch, "toast")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, _, err = svc.Analyze(ctx, uuid.New(), service.AnalysisKindText, "brunch", "toast")
	assert.ErrorIs(t, err, service.ErrInvalidMealType)

	_, _, err = svc.Analyze(ctx, uuid.New(), "audio", models.MealLunch, "toast")
	assert.Error(t, err)

	// Nothing reached the model.
	assert.Zero(t, llm.Calls)
}

func TestAnalyzeWithoutModelFails(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := newAnalysisService(db, nil)

	_, _, err := svc.Analyze(context.Background(), uuid.New(), service.AnalysisKindText, models.MealLunch, "toast")
	assert.ErrorIs(t, err, service.ErrLLMUnavailable)
}

func TestAnalyzeImageKindPromptsWithImagePayload(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	llm := &mocks.LLMClient{Reply: validAnalysisReply}
	svc := newAnalysisService(db, llm)

	analysis, _, err := svc.Analyze(context.Background(), uuid.New(), service.AnalysisKindImage, models.MealBreakfast, "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, service.AnalysisKindImage, analysis.AnalysisType)
	assert.Contains(t, llm.LastPrompt, "base64")
	assert.Contains(t, llm.LastPrompt, "aGVsbG8=")
}

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mealmind/mealmind-backend/internal/models"
)

// Analysis input kinds.
const (
	AnalysisKindText  = "text"
	AnalysisKindImage = "image"
)

// MacroAmount is one macronutrient entry in an analysis.
type MacroAmount struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Analysis is the structured nutrition breakdown produced by the model.
type Analysis struct {
	AnalysisType string `json:"analysis_type"`
	BasicInfo    struct {
		FoodName    string `json:"food_name"`
		PortionSize string `json:"portion_size"`
	} `json:"basic_info"`
	NutritionalContent struct {
		Calories       float64 `json:"calories"`
		Macronutrients struct {
			Protein MacroAmount `json:"protein"`
			Carbs   MacroAmount `json:"carbs"`
			Fat     MacroAmount `json:"fat"`
		} `json:"macronutrients"`
	} `json:"nutritional_content"`
}

// Delta converts the analysis into the additive progress update it implies.
func (a *Analysis) Delta() models.ProgressDelta {
	return models.ProgressDelta{
		Calories: a.NutritionalContent.Calories,
		Protein:  a.NutritionalContent.Macronutrients.Protein.Amount,
		Carbs:    a.NutritionalContent.Macronutrients.Carbs.Amount,
		Fat:      a.NutritionalContent.Macronutrients.Fat.Amount,
	}
}

const analysisSystemPrompt = `You are a nutrition analysis expert. Analyze the described food and respond with exactly one JSON object of the form:
{
    "analysis_type": "text" or "image",
    "basic_info": {
        "food_name": "name of the food",
        "portion_size": "estimated portion"
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
All amounts must be numbers, not strings. Estimate conservatively when unsure.`

// AnalysisService orchestrates a nutrition analysis call: result cache,
// language-model completion, structured validation, progress merge, audit
// record, and best-effort image archival.
type AnalysisService struct {
	db       *gorm.DB
	redis    *redis.Client
	llm      LLMClient
	progress *ProgressService
	images   *ImageStore
	cacheTTL time.Duration
}

// NewAnalysisService creates an AnalysisService. redisClient and images may
// be nil; caching and archival are then skipped.
func NewAnalysisService(db *gorm.DB, redisClient *redis.Client, llm LLMClient, progress *ProgressService, images *ImageStore, cacheTTL time.Duration) *AnalysisService {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &AnalysisService{
		db:       db,
		redis:    redisClient,
		llm:      llm,
		progress: progress,
		images:   images,
		cacheTTL: cacheTTL,
	}
}

// analysisCacheKey derives the result-cache key from the input kind and the
// first 100 characters of the payload. Keying on a truncated prefix means
// long inputs sharing a prefix share a cache entry; that near-duplicate
// coalescing matches how clients resubmit minor edits of the same meal.
func analysisCacheKey(kind, payload string) string {
	prefix := payload
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	sum := sha256.Sum256([]byte(prefix))
	return fmt.Sprintf("analysis:%s:%s", kind, hex.EncodeToString(sum[:16]))
}

// Analyze runs the full pipeline for one submission and returns the
// structured analysis together with the post-merge daily progress.
func (s *AnalysisService) Analyze(ctx context.Context, userID uuid.UUID, kind, mealType, payload string) (*Analysis, *models.DailyProgress, error) {
	if userID == uuid.Nil {
		return nil, nil, ErrUnauthenticated
	}
	if !models.ValidMealType(mealType) {
		return nil, nil, ErrInvalidMealType
	}
	if kind != AnalysisKindText && kind != AnalysisKindImage {
		return nil, nil, fmt.Errorf("unknown analysis kind %q", kind)
	}

	cacheKey := analysisCacheKey(kind, payload)
	analysis, cached := s.cachedAnalysis(ctx, cacheKey)
	if !cached {
		if s.llm == nil {
			return nil, nil, ErrLLMUnavailable
		}
		prompt := payload
		if kind == AnalysisKindImage {
			prompt = "Analyze the food shown in this base64-encoded image:\n" + payload
		}
		raw, err := s.llm.Complete(ctx, analysisSystemPrompt, prompt, true)
		if err != nil {
			return nil, nil, fmt.Errorf("analysis completion failed: %w", err)
		}
		analysis, err = ParseAnalysis(raw)
		if err != nil {
			return nil, nil, err
		}
		analysis.AnalysisType = kind
	}

	today := DateKey(time.Now())

	// Progress merge is the one hard side effect: the returned progress is
	// read back from the store, so a failed merge fails the whole call.
	progress, err := s.progress.Merge(ctx, userID, today, analysis.Delta())
	if err != nil {
		return nil, nil, err
	}

	// Remaining effects are best-effort and independently logged.
	imageKey := ""
	if kind == AnalysisKindImage && s.images != nil {
		key, err := s.images.ArchiveMealImage(ctx, userID, payload)
		if err != nil {
			log.Printf("[AnalysisService] image archival failed for user %s: %v", userID, err)
		} else {
			imageKey = key
		}
	}
	s.persistAuditRecord(ctx, userID, today, mealType, imageKey, analysis)
	if !cached {
		s.cacheAnalysis(ctx, cacheKey, analysis)
	}

	return analysis, progress, nil
}

// ParseAnalysis extracts the first balanced JSON object from a model reply
// and validates the required top-level fields. Any failure yields
// ErrMalformedResponse; the caller must not apply side effects in that case.
func ParseAnalysis(raw string) (*Analysis, error) {
	obj, ok := extractFirstJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedResponse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, required := range []string{"analysis_type", "basic_info", "nutritional_content"} {
		if _, present := fields[required]; !present {
			return nil, fmt.Errorf("%w: missing field %q", ErrMalformedResponse, required)
		}
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(obj), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &analysis, nil
}

// extractFirstJSONObject returns the first balanced {...} span in s,
// honoring string literals and escapes so braces inside values don't
// unbalance the scan.
func extractFirstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

func (s *AnalysisService) cachedAnalysis(ctx context.Context, key string) (*Analysis, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[AnalysisService] cache read failed for %s: %v", key, err)
		}
		return nil, false
	}
	var analysis Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		log.Printf("[AnalysisService] discarding malformed cache entry %s: %v", key, err)
		return nil, false
	}
	return &analysis, true
}

func (s *AnalysisService) cacheAnalysis(ctx context.Context, key string, analysis *Analysis) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		log.Printf("[AnalysisService] failed to marshal analysis for cache: %v", err)
		return
	}
	if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		log.Printf("[AnalysisService] cache write failed for %s: %v", key, err)
	}
}

func (s *AnalysisService) persistAuditRecord(ctx context.Context, userID uuid.UUID, date, mealType, imageKey string, analysis *Analysis) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		log.Printf("[AnalysisService] failed to marshal audit payload: %v", err)
		return
	}
	record := models.NutritionAnalysisRecord{
		UserID:   userID,
		Date:     date,
		MealType: mealType,
		FoodName: analysis.BasicInfo.FoodName,
		Calories: analysis.NutritionalContent.Calories,
		Protein:  analysis.NutritionalContent.Macronutrients.Protein.Amount,
		Carbs:    analysis.NutritionalContent.Macronutrients.Carbs.Amount,
		Fat:      analysis.NutritionalContent.Macronutrients.Fat.Amount,
		Payload:  string(payload),
		ImageKey: imageKey,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		log.Printf("[AnalysisService] audit record insert failed for user %s: %v", userID, err)
	}
}

// AnalysisHistoryEntry is one audit row plus, when the meal photo was
// archived, a short-lived presigned link to it.
type AnalysisHistoryEntry struct {
	models.NutritionAnalysisRecord
	ImageURL string `json:"image_url,omitempty"`
}

// History returns the user's analysis audit entries for one day. Presigning
// is best-effort; an entry whose link cannot be produced is returned without
// one.
func (s *AnalysisService) History(ctx context.Context, userID uuid.UUID, date string) ([]AnalysisHistoryEntry, error) {
	var records []models.NutritionAnalysisRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	entries := make([]AnalysisHistoryEntry, len(records))
	for i, record := range records {
		entries[i] = AnalysisHistoryEntry{NutritionAnalysisRecord: record}
		if record.ImageKey == "" || s.images == nil {
			continue
		}
		url, err := s.images.MealImageURL(ctx, record.ImageKey)
		if err != nil {
			log.Printf("[AnalysisService] presign failed for %s: %v", record.ImageKey, err)
			continue
		}
		entries[i].ImageURL = url
	}
	return entries, nil
}

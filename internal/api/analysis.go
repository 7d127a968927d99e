package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mealmind/mealmind-backend/internal/service"
	"github.com/mealmind/mealmind-backend/internal/types"
)

// AnalysisHandler handles nutrition analysis requests.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// RegisterRoutes registers the analysis routes
func (h *AnalysisHandler) RegisterRoutes(router *gin.RouterGroup, rateLimit gin.HandlerFunc) {
	analysis := router.Group("/analysis")
	{
		if rateLimit != nil {
			analysis.POST("", rateLimit, h.Analyze)
		} else {
			analysis.POST("", h.Analyze)
		}
		analysis.GET("/history", h.History)
	}
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, progress, err := h.analysisService.Analyze(c.Request.Context(), userID, req.Kind, req.MealType, req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		case errors.Is(err, service.ErrMalformedResponse):
			c.JSON(http.StatusBadGateway, gin.H{"error": "analysis produced an unusable result, please try again"})
		case errors.Is(err, service.ErrInvalidMealType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal type"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis": analysis,
		"progress": progress,
	})
}

func (h *AnalysisHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = service.DateKey(time.Now())
	}

	records, err := h.analysisService.History(c.Request.Context(), userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mealmind/mealmind-backend/internal/service"
	"github.com/mealmind/mealmind-backend/internal/types"
)

// GoalsHandler manages the user's daily nutrition targets.
type GoalsHandler struct {
	goalService *service.GoalService
}

func NewGoalsHandler(goalService *service.GoalService) *GoalsHandler {
	return &GoalsHandler{goalService: goalService}
}

// RegisterRoutes registers the goals routes
func (h *GoalsHandler) RegisterRoutes(router *gin.RouterGroup) {
	goals := router.Group("/goals")
	{
		goals.GET("", h.GetGoals)
		goals.POST("", h.SetGoals)
		goals.POST("/calculate", h.CalculateGoals)
		goals.GET("/history", h.GetHistory)
	}
}

func (h *GoalsHandler) GetGoals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	goals := h.goalService.EffectiveGoals(c.Request.Context(), userID, time.Now())
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (h *GoalsHandler) SetGoals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.SetGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.goalService.SetCustomGoals(c.Request.Context(), userID,
		req.DailyCalories, req.DailyProtein, req.DailyCarbs, req.DailyFat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save goals"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goals": goal})
}

func (h *GoalsHandler) CalculateGoals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.CalculateGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.goalService.CalculateAndStoreGoals(c.Request.Context(), userID, service.GoalProfile{
		Age:           req.Age,
		Gender:        req.Gender,
		WeightKg:      req.WeightKg,
		HeightCm:      req.HeightCm,
		ActivityLevel: req.ActivityLevel,
		HealthGoal:    req.HealthGoal,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to calculate goals"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goals": goal})
}

func (h *GoalsHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	goals, err := h.goalService.ListGoalVersions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load goal history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

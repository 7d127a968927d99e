package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mealmind/mealmind-backend/internal/service"
)

// ProgressHandler serves the daily dashboard: rollup totals plus the goals
// in effect. It never fails the read path; missing data renders as zeroes
// and default goals.
type ProgressHandler struct {
	progressService *service.ProgressService
	goalService     *service.GoalService
}

func NewProgressHandler(progressService *service.ProgressService, goalService *service.GoalService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		goalService:     goalService,
	}
}

// RegisterRoutes registers the progress routes
func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/progress", h.GetProgress)
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = service.DateKey(time.Now())
	}

	progress := h.progressService.Get(c.Request.Context(), userID, date)
	goals := h.goalService.EffectiveGoals(c.Request.Context(), userID, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"progress": progress,
		"goals":    goals,
	})
}

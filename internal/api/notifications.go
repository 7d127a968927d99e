package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealmind/mealmind-backend/internal/service"
	"github.com/mealmind/mealmind-backend/internal/types"
)

// NotificationsHandler manages reminder settings, device registration, and
// the scheduling pass.
type NotificationsHandler struct {
	notificationService *service.NotificationService
	pushService         *service.PushService
}

func NewNotificationsHandler(notificationService *service.NotificationService, pushService *service.PushService) *NotificationsHandler {
	return &NotificationsHandler{
		notificationService: notificationService,
		pushService:         pushService,
	}
}

// RegisterRoutes registers the notification routes
func (h *NotificationsHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("/settings", h.GetSettings)
		notifications.PUT("/settings", h.UpdateSetting)
		notifications.POST("/schedule", h.Schedule)
		notifications.GET("/scheduled", h.GetScheduled)
	}
	router.POST("/devices", h.RegisterDevice)
}

func (h *NotificationsHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	settings, err := h.notificationService.ListSettings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *NotificationsHandler) UpdateSetting(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.UpdateNotificationSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setting, err := h.notificationService.UpdateSetting(c.Request.Context(), userID,
		req.MealType, req.Hour, req.Minute, *req.Active)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update setting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

func (h *NotificationsHandler) Schedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	registered, err := h.notificationService.ScheduleReminders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule reminders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scheduled": registered})
}

func (h *NotificationsHandler) GetScheduled(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	scheduled, err := h.notificationService.ListScheduled(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load scheduled notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scheduled": scheduled})
}

func (h *NotificationsHandler) RegisterDevice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if h.pushService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push delivery not configured"})
		return
	}

	var req struct {
		Platform string `json:"platform" binding:"required,oneof=android ios"`
		Token    string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.pushService.RegisterDevice(c.Request.Context(), userID, req.Platform, req.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"device": device})
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Trigger kinds registered by the scheduler.
const (
	TriggerMealReminder  = "meal_reminder"
	TriggerProgressCheck = "progress_check"
)

// Notification content statuses recorded for analytics.
const (
	NotificationGenerated  = "generated"
	NotificationFallback   = "fallback"
	NotificationSuppressed = "suppressed"
)

// NotificationSetting is a per-user, per-meal reminder preference. Defaults
// are created at registration and mutated by preference changes; the
// scheduler reads all of a user's settings on every scheduling pass.
type NotificationSetting struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_setting_user_meal" json:"user_id"`
	MealType       string     `gorm:"size:10;not null;uniqueIndex:idx_setting_user_meal" json:"meal_type"`
	Hour           int        `gorm:"not null" json:"hour"`
	Minute         int        `gorm:"not null" json:"minute"`
	// No column default: GORM drops zero-valued fields that carry one on
	// Create, which would silently flip an inactive slot to the default.
	Active         bool       `gorm:"not null" json:"active"`
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ScheduledNotification records one registered recurring trigger so a later
// pass can audit or cancel it. The whole set for a user is rewritten on every
// scheduling pass.
type ScheduledNotification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TriggerID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"trigger_id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Kind      string    `gorm:"size:20;not null" json:"kind"`
	MealType  string    `gorm:"size:10" json:"meal_type,omitempty"`
	Hour      int       `gorm:"not null" json:"hour"`
	Minute    int       `gorm:"not null" json:"minute"`
	Title     string    `gorm:"size:255" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationLog is the analytics history of content decisions: one row per
// generation attempt, including suppressed ones.
type NotificationLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Kind      string    `gorm:"size:20;not null" json:"kind"`
	MealType  string    `gorm:"size:10" json:"meal_type,omitempty"`
	Body      string    `gorm:"type:text" json:"body"`
	Status    string    `gorm:"size:12;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

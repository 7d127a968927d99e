package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealmind/mealmind-backend/internal/models"
)

// Scheduler is the recurring-trigger registry the notification pipeline
// talks to. Registrations carry UTC hour/minute; the caller converts from
// the user's local time before registering. Cancellation is scoped to one
// user so scheduling passes for different users never interfere.
type Scheduler interface {
	RegisterDaily(ctx context.Context, n *models.ScheduledNotification) error
	CancelUser(ctx context.Context, userID uuid.UUID) error
	ListUser(ctx context.Context, userID uuid.UUID) ([]models.ScheduledNotification, error)
}

// registryScheduler stores trigger registrations in the database.
type registryScheduler struct {
	db *gorm.DB
}

// NewRegistryScheduler returns the database-backed Scheduler.
func NewRegistryScheduler(db *gorm.DB) Scheduler {
	return &registryScheduler{db: db}
}

func (s *registryScheduler) RegisterDaily(ctx context.Context, n *models.ScheduledNotification) error {
	if n.TriggerID == uuid.Nil {
		n.TriggerID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *registryScheduler) CancelUser(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ScheduledNotification{}).Error
}

func (s *registryScheduler) ListUser(ctx context.Context, userID uuid.UUID) ([]models.ScheduledNotification, error) {
	var out []models.ScheduledNotification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("hour ASC, minute ASC").
		Find(&out).Error
	return out, err
}

// Dispatcher fires registered triggers when their time comes around and
// hands the pre-generated content to the push boundary. One dispatcher per
// process; it ticks once a minute.
type Dispatcher struct {
	db   *gorm.DB
	push *PushService
}

// NewDispatcher creates a Dispatcher. push may be nil; firing then only
// updates bookkeeping, which keeps local development free of AWS calls.
func NewDispatcher(db *gorm.DB, push *PushService) *Dispatcher {
	return &Dispatcher{db: db, push: push}
}

// Run blocks until ctx is done, firing due triggers once per minute.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.fireDue(ctx, now.UTC())
		}
	}
}

func (d *Dispatcher) fireDue(ctx context.Context, now time.Time) {
	var due []models.ScheduledNotification
	if err := d.db.WithContext(ctx).
		Where("hour = ? AND minute = ?", now.Hour(), now.Minute()).
		Find(&due).Error; err != nil {
		log.Printf("[Dispatcher] due-trigger lookup failed: %v", err)
		return
	}

	for _, n := range due {
		if d.push != nil {
			d.push.PushToUser(ctx, n.UserID, n.Title, n.Body, map[string]string{
				"kind":      n.Kind,
				"meal_type": n.MealType,
			})
		}
		if n.Kind == models.TriggerMealReminder && n.MealType != "" {
			if err := d.db.WithContext(ctx).
				Model(&models.NotificationSetting{}).
				Where("user_id = ? AND meal_type = ?", n.UserID, n.MealType).
				Update("last_notified_at", now).Error; err != nil {
				log.Printf("[Dispatcher] last_notified update failed for user %s: %v", n.UserID, err)
			}
		}
	}
}

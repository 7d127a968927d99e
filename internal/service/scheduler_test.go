package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmind/mealmind-backend/internal/models"
	"github.com/mealmind/mealmind-backend/internal/service"
	"github.com/mealmind/mealmind-backend/internal/testhelpers"
)

func TestRegistrySchedulerCancelIsScopedToUser(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	sched := service.NewRegistryScheduler(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()

	for _, n := range []*models.ScheduledNotification{
		{UserID: alice, Kind: models.TriggerMealReminder, MealType: models.MealBreakfast, Hour: 8, Minute: 0},
		{UserID: alice, Kind: models.TriggerMealReminder, MealType: models.MealLunch, Hour: 12, Minute: 30},
		{UserID: bob, Kind: models.TriggerMealReminder, MealType: models.MealDinner, Hour: 19, Minute: 0},
	} {
		require.NoError(t, sched.RegisterDaily(ctx, n))
		assert.NotEqual(t, uuid.Nil, n.TriggerID)
	}

	require.NoError(t, sched.CancelUser(ctx, alice))

	remaining, err := sched.ListUser(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	bobTriggers, err := sched.ListUser(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobTriggers, 1)
	assert.Equal(t, models.MealDinner, bobTriggers[0].MealType)
}

func TestRegistrySchedulerListOrdersByTime(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	sched := service.NewRegistryScheduler(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, sched.RegisterDaily(ctx, &models.ScheduledNotification{
		UserID: userID, Kind: models.TriggerMealReminder, MealType: models.MealDinner, Hour: 19, Minute: 0,
	}))
	require.NoError(t, sched.RegisterDaily(ctx, &models.ScheduledNotification{
		UserID: userID, Kind: models.TriggerMealReminder, MealType: models.MealBreakfast, Hour: 8, Minute: 0,
	}))

	listed, err := sched.ListUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, models.MealBreakfast, listed[0].MealType)
	assert.Equal(t, models.MealDinner, listed[1].MealType)
}

func TestRegistrySchedulerKeepsProvidedTriggerID(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	sched := service.NewRegistryScheduler(db)

	id := uuid.New()
	n := models.ScheduledNotification{
		TriggerID: id,
		UserID:    uuid.New(),
		Kind:      models.TriggerProgressCheck,
		Hour:      12,
		Minute:    30,
	}
	require.NoError(t, sched.RegisterDaily(context.Background(), &n))
	assert.Equal(t, id, n.TriggerID)
}

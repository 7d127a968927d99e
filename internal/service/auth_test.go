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

func TestRegisterLoginRoundTrip(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewAuthService(db, "test-secret", nil)
	ctx := context.Background()

	token, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2hunter2", "Berlin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, claims.UserID)
	assert.Equal(t, "Alice", claims.Name)

	user, err := svc.GetUser(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Berlin", user.Location)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	loginToken, err := svc.Login(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	loginClaims, err := svc.ValidateToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, loginClaims.UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewAuthService(db, "test-secret", nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2hunter2", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Alice", "alice@example.com", "differentpass", "")
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewAuthService(db, "test-secret", nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2hunter2", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewAuthService(db, "test-secret", nil)
	other := service.NewAuthService(db, "other-secret", nil)
	ctx := context.Background()

	token, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2hunter2", "")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRegisterSeedsDefaultReminderSlots(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	notifications := newNotificationService(db, nil, nil, nil)
	svc := service.NewAuthService(db, "test-secret", notifications)
	ctx := context.Background()

	token, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter2hunter2", "Berlin")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.NotificationSetting{}).
		Where("user_id = ?", claims.UserID).Count(&count).Error)
	assert.EqualValues(t, 4, count)
}

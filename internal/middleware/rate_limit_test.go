package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mealmind/mealmind-backend/internal/middleware"
)

type stubLimiter struct {
	allowed   bool
	remaining int
	err       error
}

func (s *stubLimiter) Allow(ctx context.Context, id string) (bool, int, time.Time, error) {
	return s.allowed, s.remaining, time.Now().Add(time.Hour), s.err
}

func setupRateLimitRouter(limiter middleware.Limiter, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := []gin.HandlerFunc{}
	if authenticated {
		handlers = append(handlers, func(c *gin.Context) {
			c.Set("user_id", uuid.New())
		})
	}
	handlers = append(handlers, middleware.RateLimit(limiter, 10), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.POST("/limited", handlers...)
	return router
}

func TestRateLimitAllowsWithinCeiling(t *testing.T) {
	router := setupRateLimitRouter(&stubLimiter{allowed: true, remaining: 7}, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "7", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitRejectsOverCeiling(t *testing.T) {
	router := setupRateLimitRouter(&stubLimiter{allowed: false, remaining: 0}, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "retry_after")
}

func TestRateLimitRequiresAuthentication(t *testing.T) {
	router := setupRateLimitRouter(&stubLimiter{allowed: true}, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitFailsOpenOnLimiterError(t *testing.T) {
	router := setupRateLimitRouter(&stubLimiter{err: context.DeadlineExceeded}, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}

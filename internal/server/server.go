package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mealmind/mealmind-backend/config"
	"github.com/mealmind/mealmind-backend/internal/api"
	"github.com/mealmind/mealmind-backend/internal/middleware"
	"github.com/mealmind/mealmind-backend/internal/router"
	"github.com/mealmind/mealmind-backend/internal/service"
)

// Server wires the service graph and owns the HTTP listener plus the
// notification dispatcher.
type Server struct {
	http       *http.Server
	dispatcher *service.Dispatcher
	cancel     context.CancelFunc
}

// New constructs the full service graph from the shared handles. llm, push
// and images may be nil; the affected features degrade as documented on each
// service.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, llm service.LLMClient, images *service.ImageStore, push *service.PushService) *Server {
	progressService := service.NewProgressService(db, redisClient, cfg.ProgressCacheTTL)
	goalService := service.NewGoalService(db)
	analysisService := service.NewAnalysisService(db, redisClient, llm, progressService, images, cfg.AnalysisCacheTTL)

	notifyLimiter := service.NewNotificationRateLimiter(redisClient, cfg.NotifyRateLimit, cfg.NotifyRateWindow)
	tzResolver := service.NewTimezoneResolver(llm, redisClient, cfg.DefaultTimezone)
	scheduler := service.NewRegistryScheduler(db)
	notificationService := service.NewNotificationService(db, llm, progressService, goalService, notifyLimiter, tzResolver, scheduler)

	authService := service.NewAuthService(db, cfg.JWTSecret, notificationService)

	var analysisLimit gin.HandlerFunc
	if redisClient != nil {
		limiter := service.NewAnalysisRateLimiter(redisClient)
		analysisLimit = middleware.RateLimit(limiter, limiter.Limit())
	}

	engine := router.SetupRouter(
		db,
		api.NewAuthHandler(authService),
		api.NewAnalysisHandler(analysisService),
		api.NewProgressHandler(progressService, goalService),
		api.NewGoalsHandler(goalService),
		api.NewNotificationsHandler(notificationService, push),
		authService,
		analysisLimit,
	)

	return &Server{
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
		dispatcher: service.NewDispatcher(db, push),
	}
}

// Start runs the dispatcher and serves HTTP until the listener stops.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.dispatcher.Run(ctx)

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the dispatcher and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.http.Shutdown(ctx)
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/mealmind/mealmind-backend/config"
	"github.com/mealmind/mealmind-backend/internal/database"
	"github.com/mealmind/mealmind-backend/internal/server"
	"github.com/mealmind/mealmind-backend/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if config.IsDevelopment() {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	var llm service.LLMClient
	if cfg.LLMAPIKey != "" || os.Getenv("DEEPSEEK_API_KEY_FILE") != "" {
		llmService, err := service.NewLLMService(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize LLM service: %v", err)
		}
		llm = llmService
	} else {
		log.Printf("No LLM API key configured; analysis disabled, reminders use canned content")
	}

	var images *service.ImageStore
	if os.Getenv("S3_BUCKET_NAME") != "" {
		s3Config, err := config.NewS3Config(context.Background())
		if err != nil {
			log.Printf("S3 unavailable, image archival disabled: %v", err)
		} else {
			images = service.NewImageStore(s3Config)
		}
	}

	var push *service.PushService
	if os.Getenv("SNS_PLATFORM_ARN") != "" {
		push, err = service.NewPushService(db)
		if err != nil {
			log.Printf("SNS unavailable, push delivery disabled: %v", err)
			push = nil
		}
	}

	srv := server.New(cfg, db, redisClient, llm, images, push)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

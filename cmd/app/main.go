package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/api"
	"github.com/NaePawat/zentry-backend-challenge/internal/generator"
	"github.com/NaePawat/zentry-backend-challenge/internal/ingest"
	"github.com/NaePawat/zentry-backend-challenge/internal/middleware"
	"github.com/NaePawat/zentry-backend-challenge/internal/repository"
	"github.com/NaePawat/zentry-backend-challenge/internal/service"
	"github.com/NaePawat/zentry-backend-challenge/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	userService := service.NewUserService(repo)
	leaderboardService := service.NewLeaderboardService(repo)

	feed := api.NewTickFeed()

	pipeline := ingest.NewPipeline(repo, cfg.Scheduler.MaxReferralDepth)
	executor := ingest.NewExecutor(cfg.Scheduler.Concurrency, cfg.Scheduler.SubBatchSize)
	scheduler := ingest.NewScheduler(cfg.Scheduler, generator.New(0), pipeline, executor, feed)

	if err := scheduler.Start(); err != nil {
		zapLogger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService)
	api.NewLeaderboardRoutes(a, leaderboardService)
	api.NewTickFeedRoutes(a, feed)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}

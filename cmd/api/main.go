package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/handler"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/metrics"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/middleware"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/repository"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/config"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/services"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/logger"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		JSON:   cfg.LogJSON,
		Prefix: "workflow-api",
	}); err != nil {
		logger.Fatal("failed to initialise logger", "error", err)
	}

	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", "error", err)
	}
	defer db.Close()

	if cfg.Migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			logger.Fatal("failed to apply schema", "error", err)
		}
		logger.Info("database schema applied")
	}

	// Revocation checks and the Redis readiness probe are only wired when
	// Redis is configured.
	var (
		revocations middleware.RevocationStore
		redisPinger handler.RedisPinger
	)
	if cfg.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not reachable, revocation checks will fail closed", "error", err)
		} else {
			logger.Info("connected to redis", "address", cfg.RedisAddress)
		}
		revocations = redisClient
		redisPinger = redisClient
	}

	store := repository.NewStore(db)
	m := metrics.New()

	router := handler.NewRouter(handler.RouterConfig{
		LessonPlans:    services.NewLessonPlanService(store),
		Observations:   services.NewObservationService(store),
		Feedback:       services.NewFeedbackService(store),
		Auth:           middleware.NewAuthMiddleware(cfg.JWTPublicKey, revocations),
		Health:         handler.NewHealthHandler(db, redisPinger),
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StandardLog(),
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("could not start server", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/messaging"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/metrics"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/outbox"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/config"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/logger"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.LoadRelayConfig()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		JSON:   cfg.LogJSON,
		Prefix: "outbox-relay",
	}); err != nil {
		logger.Fatal("failed to initialise logger", "error", err)
	}

	logger.Info("starting outbox relay service")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", "error", err)
	}
	defer db.Close()

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.NotificationQueueName)
	if err != nil {
		logger.Fatal("failed to connect to rabbitmq", "error", err)
	}
	defer broker.Close()
	logger.Info("connected to rabbitmq", "queue", cfg.NotificationQueueName)

	m := metrics.New()
	relayWorker := outbox.NewRelay(db, cfg.DatabaseURL, broker, m)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, relayWorker.IsHealthy())
	})
	healthMux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, relayWorker.IsReady() && broker.Ready())
	})
	healthMux.Handle("GET /metrics", m.Handler())

	healthServer := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logger.StandardLog(),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.HealthPort)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to capture fatal errors from relay worker
	errChan := make(chan error, 1)

	go func() {
		logger.Info("starting event processing worker")
		if err := relayWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errChan:
		logger.Error("relay worker failed, shutting down", "error", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown failed", "error", err)
	}

	logger.Info("shutdown complete")
}

func writeHealth(w http.ResponseWriter, up bool) {
	status := "UP"
	httpStatus := http.StatusOK
	if !up {
		status = "DOWN"
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    status,
		"component": "outbox-relay",
	})
}

package config

import (
	"errors"
	"os"
)

// RelayConfig holds configuration for the outbox relay service.
type RelayConfig struct {
	DatabaseURL           string
	RabbitMQURL           string
	NotificationQueueName string
	HealthPort            string
	LogLevel              string
	LogFile               string
	LogJSON               bool
}

func LoadRelayConfig() (*RelayConfig, error) {
	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		return nil, errors.New("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		return nil, errors.New("RABBITMQ_URL environment variable is required")
	}

	return &RelayConfig{
		DatabaseURL:           dbURL,
		RabbitMQURL:           rabbitURL,
		NotificationQueueName: getenv("NOTIFICATION_QUEUE_NAME", "workflow.transitions"),
		HealthPort:            getenv("RELAY_HEALTH_PORT", "8090"),
		LogLevel:              getenv("LOG_LEVEL", "info"),
		LogFile:               os.Getenv("LOG_FILE"),
		LogJSON:               os.Getenv("LOG_FORMAT") == "json",
	}, nil
}

package config

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/logger"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// The name parameter uniquely identifies the circuit breaker instance.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Second * 10,
		Timeout:     breakerTimeout(name),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Open circuit after 3 consecutive failures
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Error("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// breakerTimeout aligns open-state timeouts with the 5s health check timeout.
func breakerTimeout(name string) time.Duration {
	switch name {
	case "Redis-Auth":
		return time.Second * 5
	case "PostgreSQL", "Relay-PostgreSQL":
		return time.Second * 10
	default:
		return time.Second * 30 // RabbitMQ and other operations
	}
}

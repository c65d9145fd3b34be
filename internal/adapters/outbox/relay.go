package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/metrics"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/repository"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/config"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/logger"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute

	// Event processing timeouts
	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	// Health check configuration
	healthCheckStaleThreshold = 5 * time.Minute

	// Batch processing limits
	maxEventsPerBatch = 100
)

// errMalformed marks an outbox row whose payload can never be published.
var errMalformed = errors.New("malformed outbox payload")

// Relay listens for PostgreSQL NOTIFY signals on the outbox channel and
// publishes the stored transition events to the notification queue.
type Relay struct {
	db        *sql.DB
	dbURL     string
	publisher ports.TransitionPublisher
	metrics   *metrics.Metrics
	dbCB      *gobreaker.CircuitBreaker

	mu            sync.RWMutex
	lastProcessed time.Time
	healthy       bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.TransitionPublisher, m *metrics.Metrics) *Relay {
	return &Relay{
		db:            db,
		dbURL:         dbURL,
		publisher:     publisher,
		metrics:       m,
		dbCB:          config.NewCircuitBreaker("Relay-PostgreSQL"),
		lastProcessed: time.Now(),
		healthy:       true,
	}
}

// IsHealthy reports whether the relay process is alive. An open circuit is
// degraded but recoverable and does not count against liveness.
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.healthy
}

// IsReady reports whether the relay can process events.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if time.Since(r.lastProcessed) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy
}

func (r *Relay) markProcessed() {
	r.mu.Lock()
	r.lastProcessed = time.Now()
	r.healthy = true
	r.mu.Unlock()
}

func (r *Relay) markUnhealthy() {
	r.mu.Lock()
	r.healthy = false
	r.mu.Unlock()
}

// Start listens for outbox notifications until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("outbox listener error", "error", err)
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(repository.OutboxChannel); err != nil {
		return err
	}

	logger.Info("outbox relay listening", "channel", repository.OutboxChannel)

	// Catch up on anything committed while the relay was down
	if _, err := r.processUnprocessedEvents(ctx); err != nil {
		logger.Error("outbox startup backlog failed", "error", err)
	} else {
		r.markProcessed()
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox relay shutting down")
			return ctx.Err()

		case notification := <-listener.Notify:
			if notification == nil {
				logger.Warn("outbox listener reconnecting")
				r.markUnhealthy()
				continue
			}

			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				logger.Error("outbox event failed", "event_id", notification.Extra, "error", err)
				continue
			}
			r.markProcessed()

		case <-ticker.C:
			// Keep the connection alive and pick up missed notifications
			go listener.Ping()

			if _, err := r.processUnprocessedEvents(ctx); err != nil {
				logger.Error("outbox periodic sweep failed", "error", err)
				continue
			}
			r.markProcessed()
		}
	}
}

// dispatch decodes one outbox payload and publishes it. A payload that
// does not decode yields errMalformed.
func (r *Relay) dispatch(ctx context.Context, id string, payload []byte) error {
	var evt ports.TransitionEvent
	if err := json.Unmarshal(payload, &evt); err != nil || evt.Type == "" {
		logger.Error("invalid outbox payload", "event_id", id, "error", err)
		r.metrics.OutboxFailed()
		return errMalformed
	}

	if err := r.publisher.PublishTransition(ctx, evt); err != nil {
		r.metrics.OutboxFailed()
		return err
	}

	r.metrics.OutboxPublished(string(evt.Type))
	logger.Debug("outbox event published", "event_id", id, "type", evt.Type, "recipient_id", evt.RecipientID)
	return nil
}

func markSent(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	return err
}

// processEventByID publishes one event. Broker failures are returned
// outside the database breaker so a RabbitMQ outage does not trip it.
func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	var publishErr error
	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var payload []byte
		err = tx.QueryRowContext(ctx, `
			SELECT payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&payload)
		if errors.Is(err, sql.ErrNoRows) {
			// Already sent, or locked by the periodic sweep
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		// Malformed rows are marked sent so they are not retried forever
		if err := r.dispatch(ctx, eventID, payload); err != nil && !errors.Is(err, errMalformed) {
			publishErr = fmt.Errorf("publish event %s: %w", eventID, err)
			return nil, nil
		}
		if err := markSent(ctx, tx, eventID); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	if err != nil {
		return err
	}
	return publishErr
}

// processUnprocessedEvents publishes the oldest unsent events in order and
// returns how many were marked sent. It stops at the first publish failure,
// commits what went before it and returns that failure.
func (r *Relay) processUnprocessedEvents(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	var (
		sent       int
		publishErr error
	)
	_, err := r.dbCB.Execute(func() (interface{}, error) {
		sent = 0
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		type record struct {
			ID      string
			Payload []byte
		}

		var records []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.Payload); err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, rec := range records {
			if err := r.dispatch(ctx, rec.ID, rec.Payload); err != nil && !errors.Is(err, errMalformed) {
				// Stop so later events for the same recipient stay behind this one
				publishErr = fmt.Errorf("publish event %s: %w", rec.ID, err)
				break
			}
			if err := markSent(ctx, tx, rec.ID); err != nil {
				return nil, err
			}
			sent++
		}
		return nil, tx.Commit()
	})
	if err != nil {
		return 0, err
	}

	if sent > 0 {
		logger.Info("outbox sweep published events", "count", sent)
	}
	return sent, publishErr
}

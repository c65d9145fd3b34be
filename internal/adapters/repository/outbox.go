package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

// EnqueueEvent stores evt in the outbox and notifies the relay. NOTIFY is
// delivered on commit, so a rolled back operation announces nothing.
func (t *sqlTx) EnqueueEvent(ctx context.Context, evt ports.TransitionEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		evt.ID, evt.Entity, evt.EntityID, evt.Type, string(payload), evt.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", OutboxChannel, evt.ID); err != nil {
		return fmt.Errorf("notify outbox: %w", err)
	}
	return nil
}

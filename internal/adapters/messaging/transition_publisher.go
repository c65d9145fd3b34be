package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

var _ ports.TransitionPublisher = (*RabbitMQBroker)(nil)

// PublishTransition sends evt to the notification queue as a persistent
// JSON message. The event type travels in the message type so consumers
// can route without decoding the body.
func (rmq *RabbitMQBroker) PublishTransition(ctx context.Context, evt ports.TransitionEvent) error {
	msg, err := newPublishing(evt)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		return nil, rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			msg,
		)
	})
	return err
}

func newPublishing(evt ports.TransitionEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event %s: %w", evt.ID, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Type:         string(evt.Type),
		Timestamp:    evt.OccurredAt,
		Body:         body,
	}, nil
}

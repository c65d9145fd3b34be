package ports

import (
	"context"
	"time"
)

type EventType string

const (
	EventLessonPlanSubmitted  EventType = "LESSON_PLAN_SUBMITTED"
	EventLessonPlanApproved   EventType = "LESSON_PLAN_APPROVED"
	EventLessonPlanRejected   EventType = "LESSON_PLAN_REJECTED"
	EventLessonPlanWithdrawn  EventType = "LESSON_PLAN_WITHDRAWN"
	EventObservationScheduled EventType = "OBSERVATION_SCHEDULED"
	EventObservationOngoing   EventType = "OBSERVATION_ONGOING"
	EventObservationCompleted EventType = "OBSERVATION_COMPLETED"
	EventFeedbackSubmitted    EventType = "FEEDBACK_SUBMITTED"
	EventEvaluationSubmitted  EventType = "EVALUATION_SUBMITTED"
)

// TransitionEvent announces one committed state transition. It carries what
// the notification service needs to build a notification for the recipient.
type TransitionEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Entity      string    `json:"entity"`
	EntityID    string    `json:"entity_id"`
	FromStatus  string    `json:"from_status,omitempty"`
	ToStatus    string    `json:"to_status,omitempty"`
	InitiatorID string    `json:"initiator_id"`
	RecipientID string    `json:"recipient_id,omitempty"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type TransitionPublisher interface {
	PublishTransition(ctx context.Context, evt TransitionEvent) error
}

package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

const (
	entityLessonPlan  = "lesson_plan"
	entityObservation = "observation"
	entityFeedback    = "feedback"
	entityEvaluation  = "evaluation"
)

func newEvent(typ ports.EventType, entity, entityID, from, to, initiator, recipient, message string, at time.Time) ports.TransitionEvent {
	return ports.TransitionEvent{
		ID:          uuid.NewString(),
		Type:        typ,
		Entity:      entity,
		EntityID:    entityID,
		FromStatus:  from,
		ToStatus:    to,
		InitiatorID: initiator,
		RecipientID: recipient,
		Message:     message,
		OccurredAt:  at,
	}
}

func lower[S ~string](s S) string {
	return strings.ToLower(string(s))
}

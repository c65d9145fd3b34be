package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

// MockTransitionPublisher implements ports.TransitionPublisher for testing
// the outbox relay without a RabbitMQ connection.
type MockTransitionPublisher struct {
	mu sync.RWMutex

	PublishedEvents []ports.TransitionEvent

	// Error injection for testing error scenarios
	PublishError error

	PublishCallCount int
}

var _ ports.TransitionPublisher = (*MockTransitionPublisher)(nil)

func NewMockTransitionPublisher() *MockTransitionPublisher {
	return &MockTransitionPublisher{
		PublishedEvents: make([]ports.TransitionEvent, 0),
	}
}

// PublishTransition captures published events for verification.
func (m *MockTransitionPublisher) PublishTransition(ctx context.Context, evt ports.TransitionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of all events that were published.
func (m *MockTransitionPublisher) GetPublishedEvents() []ports.TransitionEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.TransitionEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

func (m *MockTransitionPublisher) GetPublishCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PublishCallCount
}

// SetPublishError swaps the injected error while the relay may be running.
func (m *MockTransitionPublisher) SetPublishError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishError = err
}

// Reset clears all tracking data.
func (m *MockTransitionPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedEvents = make([]ports.TransitionEvent, 0)
	m.PublishError = nil
	m.PublishCallCount = 0
}

// CreateTestEvent creates a sample lesson plan submission event.
func CreateTestEvent() ports.TransitionEvent {
	return ports.TransitionEvent{
		ID:          "test-event-id",
		Type:        ports.EventLessonPlanSubmitted,
		Entity:      "lesson_plan",
		EntityID:    "test-lesson-plan-id",
		ToStatus:    "PENDING",
		InitiatorID: "test-trainee-id",
		RecipientID: "test-supervisor-id",
		Message:     "New lesson plan \"Fractions\" submitted for review",
		OccurredAt:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

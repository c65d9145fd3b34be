package ports

import (
	"context"
	"errors"
	"time"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence port. Every mutating workflow operation runs its
// precondition reads and writes inside a single Atomic call.
type Store interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	ListLessonPlans(ctx context.Context, filter LessonPlanFilter) ([]domain.LessonPlan, error)
	ListObservations(ctx context.Context, filter ObservationFilter) ([]domain.ObservationRecord, error)
	ListFeedback(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error)
}

// Tx is a unit of work. Lookups lock the returned row until the transaction
// ends; status updates are compare-and-set and report whether a row changed.
type Tx interface {
	LessonPlanByID(ctx context.Context, id string) (*domain.LessonPlan, error)
	HasPendingLessonPlan(ctx context.Context, traineeID string) (bool, error)
	InsertLessonPlan(ctx context.Context, plan domain.LessonPlan) error
	UpdateLessonPlanStatus(ctx context.Context, id string, from, to domain.LessonPlanStatus, at time.Time) (bool, error)
	DeleteLessonPlan(ctx context.Context, id string, expected domain.LessonPlanStatus) (bool, error)

	ObservationByID(ctx context.Context, id string) (*domain.Observation, error)
	InsertObservation(ctx context.Context, obs domain.Observation) error
	UpdateObservationStatus(ctx context.Context, id string, from, to domain.ObservationStatus, at time.Time) (bool, error)

	InsertFeedback(ctx context.Context, fb domain.Feedback) error
	InsertEvaluation(ctx context.Context, ev domain.Evaluation) error

	AssignmentByID(ctx context.Context, id string) (*domain.TPAssignment, error)
	IsSupervisorOf(ctx context.Context, supervisorID, traineeID string) (bool, error)
	// SupervisorOf returns "" when the trainee has no assignment.
	SupervisorOf(ctx context.Context, traineeID string) (string, error)

	EnqueueEvent(ctx context.Context, evt TransitionEvent) error
}

// Empty filter fields are not applied.
type LessonPlanFilter struct {
	TraineeID    string
	SupervisorID string
	Status       domain.LessonPlanStatus
}

type ObservationFilter struct {
	TraineeID    string
	SupervisorID string
}

type FeedbackFilter struct {
	TraineeID    string
	SupervisorID string
}

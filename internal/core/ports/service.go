package ports

import (
	"context"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
)

type LessonPlanService interface {
	Submit(ctx context.Context, traineeID string, draft domain.LessonPlanDraft) (*domain.LessonPlan, error)
	Review(ctx context.Context, lessonPlanID, supervisorID string, decision domain.ReviewDecision) (*domain.LessonPlan, *domain.Feedback, error)
	Delete(ctx context.Context, lessonPlanID, traineeID string) (string, error)
	List(ctx context.Context, viewer domain.Viewer, status string) ([]domain.LessonPlan, error)
}

type ObservationService interface {
	Schedule(ctx context.Context, supervisorID string, req domain.ScheduleRequest) (*domain.Observation, error)
	AdvanceStatus(ctx context.Context, observationID, supervisorID string, next domain.ObservationStatus) (*domain.Observation, error)
	List(ctx context.Context, viewer domain.Viewer) ([]domain.ObservationView, error)
}

type FeedbackService interface {
	SubmitObservationFeedback(ctx context.Context, observationID, supervisorID string, in domain.ObservationFeedbackInput) (*domain.Feedback, error)
	SubmitStudentEvaluation(ctx context.Context, in domain.EvaluationInput) (*domain.Evaluation, error)
	List(ctx context.Context, viewer domain.Viewer) ([]domain.Feedback, error)
}

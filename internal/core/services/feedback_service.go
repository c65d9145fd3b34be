package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/normalize"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/validation"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/logger"
)

type FeedbackService struct {
	store ports.Store
	now   func() time.Time
}

var _ ports.FeedbackService = (*FeedbackService)(nil)

func NewFeedbackService(store ports.Store) *FeedbackService {
	return &FeedbackService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SubmitObservationFeedback scores a COMPLETED observation on the 0-10 scale.
// Several feedback entries per observation are accepted.
func (s *FeedbackService) SubmitObservationFeedback(
	ctx context.Context,
	observationID, supervisorID string,
	in domain.ObservationFeedbackInput,
) (*domain.Feedback, error) {
	if err := validation.Required(map[string]string{
		"observationId": observationID,
		"supervisorId":  supervisorID,
	}); err != nil {
		return nil, err
	}
	in, err := validation.ObservationFeedback(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var fb domain.Feedback
	err = s.store.Atomic(ctx, func(tx ports.Tx) error {
		obs, err := loadObservation(ctx, tx, observationID)
		if err != nil {
			return err
		}
		if obs.SupervisorID != supervisorID {
			return domain.Errorf(domain.KindPermission, "observation belongs to another supervisor")
		}
		if obs.Status != domain.ObservationCompleted {
			return domain.Errorf(domain.KindPrecondition, "feedback can only be submitted for completed observations")
		}

		fb = domain.Feedback{
			ID:            uuid.NewString(),
			ObservationID: obs.ID,
			SupervisorID:  supervisorID,
			TraineeID:     obs.TraineeID,
			Score:         in.Score,
			Comments:      in.Comments,
			CreatedAt:     now,
		}
		if err := tx.InsertFeedback(ctx, fb); err != nil {
			return fmt.Errorf("insert feedback: %w", err)
		}
		return tx.EnqueueEvent(ctx, newEvent(
			ports.EventFeedbackSubmitted, entityFeedback, fb.ID,
			"", "", supervisorID, obs.TraineeID,
			fmt.Sprintf("New feedback on your observation of %s (score %d/%d)", obs.Date, *in.Score, domain.ObservationScoreMax), now,
		))
	})
	if err != nil {
		return nil, err
	}

	logger.Info("observation feedback submitted", "feedback_id", fb.ID, "observation_id", observationID)
	return &fb, nil
}

// SubmitStudentEvaluation records the 0-100 placement grade for a TP assignment.
func (s *FeedbackService) SubmitStudentEvaluation(ctx context.Context, in domain.EvaluationInput) (*domain.Evaluation, error) {
	in, err := validation.Evaluation(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ev := domain.Evaluation{
		ID:             uuid.NewString(),
		TPAssignmentID: in.TPAssignmentID,
		TraineeID:      in.TraineeID,
		SupervisorID:   in.SupervisorID,
		Score:          *in.Score,
		Comments:       in.Comments,
		CreatedAt:      now,
	}
	err = s.store.Atomic(ctx, func(tx ports.Tx) error {
		assignment, err := tx.AssignmentByID(ctx, in.TPAssignmentID)
		if errors.Is(err, ports.ErrNotFound) {
			return domain.Errorf(domain.KindNotFound, "tp assignment %s not found", in.TPAssignmentID)
		}
		if err != nil {
			return fmt.Errorf("load tp assignment: %w", err)
		}
		if assignment.SupervisorID != in.SupervisorID {
			return domain.Errorf(domain.KindPermission, "supervisor is not assigned to this placement")
		}
		if assignment.TraineeID != in.TraineeID {
			return domain.Errorf(domain.KindPermission, "trainee does not belong to this placement")
		}

		if err := tx.InsertEvaluation(ctx, ev); err != nil {
			return fmt.Errorf("insert evaluation: %w", err)
		}
		return tx.EnqueueEvent(ctx, newEvent(
			ports.EventEvaluationSubmitted, entityEvaluation, ev.ID,
			"", "", in.SupervisorID, in.TraineeID,
			fmt.Sprintf("Your placement at %s was graded %d/%d", normalize.String(assignment.School, normalize.Unknown), ev.Score, domain.EvaluationScoreMax), now,
		))
	})
	if err != nil {
		return nil, err
	}

	logger.Info("student evaluation submitted", "evaluation_id", ev.ID, "tp_assignment_id", ev.TPAssignmentID)
	return &ev, nil
}

// List returns feedback received by a trainee or written by a supervisor.
func (s *FeedbackService) List(ctx context.Context, viewer domain.Viewer) ([]domain.Feedback, error) {
	var filter ports.FeedbackFilter
	switch viewer.Role {
	case domain.RoleTrainee:
		filter.TraineeID = viewer.ID
	case domain.RoleSupervisor:
		filter.SupervisorID = viewer.ID
	case domain.RoleAdmin:
	default:
		return nil, domain.Errorf(domain.KindPermission, "role %q cannot list feedback", viewer.Role)
	}

	entries, err := s.store.ListFeedback(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	now := s.now()
	out := make([]domain.Feedback, 0, len(entries))
	for _, fb := range entries {
		out = append(out, normalize.Feedback(fb, now))
	}
	return out, nil
}

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

type ObservationService struct {
	store ports.Store
	now   func() time.Time
}

var _ ports.ObservationService = (*ObservationService)(nil)

func NewObservationService(store ports.Store) *ObservationService {
	return &ObservationService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Schedule books a classroom visit against an APPROVED lesson plan of a
// trainee the supervisor is assigned to.
func (s *ObservationService) Schedule(
	ctx context.Context,
	supervisorID string,
	req domain.ScheduleRequest,
) (*domain.Observation, error) {
	if err := validation.Required(map[string]string{"supervisorId": supervisorID}); err != nil {
		return nil, err
	}
	req, err := validation.ScheduleRequest(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	obs := domain.Observation{
		ID:           uuid.NewString(),
		SupervisorID: supervisorID,
		TraineeID:    req.TraineeID,
		LessonPlanID: req.LessonPlanID,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       domain.ObservationScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.Atomic(ctx, func(tx ports.Tx) error {
		plan, err := loadLessonPlan(ctx, tx, req.LessonPlanID)
		if err != nil {
			return err
		}
		if plan.TraineeID != req.TraineeID {
			return domain.NewValidationError(map[string]string{
				"traineeId": "does not match the lesson plan's trainee",
			})
		}
		allowed, err := tx.IsSupervisorOf(ctx, supervisorID, req.TraineeID)
		if err != nil {
			return fmt.Errorf("check supervision: %w", err)
		}
		if !allowed {
			return domain.Errorf(domain.KindPermission, "supervisor is not assigned to this trainee")
		}
		if plan.Status != domain.LessonPlanApproved {
			return domain.Errorf(domain.KindPrecondition, "only approved lesson plans can be scheduled")
		}

		if err := tx.InsertObservation(ctx, obs); err != nil {
			return fmt.Errorf("insert observation: %w", err)
		}
		return tx.EnqueueEvent(ctx, newEvent(
			ports.EventObservationScheduled, entityObservation, obs.ID,
			"", string(domain.ObservationScheduled), supervisorID, req.TraineeID,
			fmt.Sprintf("Observation of %q scheduled for %s at %s", plan.Title, obs.Date, obs.StartTime), now,
		))
	})
	if err != nil {
		return nil, err
	}

	logger.Info("observation scheduled", "observation_id", obs.ID, "lesson_plan_id", obs.LessonPlanID)
	return &obs, nil
}

// AdvanceStatus moves an observation strictly forward through
// SCHEDULED, ONGOING and COMPLETED.
func (s *ObservationService) AdvanceStatus(
	ctx context.Context,
	observationID, supervisorID string,
	next domain.ObservationStatus,
) (*domain.Observation, error) {
	if err := validation.Required(map[string]string{
		"observationId": observationID,
		"supervisorId":  supervisorID,
	}); err != nil {
		return nil, err
	}
	if err := validation.Struct(domain.StatusUpdate{Status: next}); err != nil {
		return nil, err
	}

	now := s.now()
	var advanced domain.Observation
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		obs, err := loadObservation(ctx, tx, observationID)
		if err != nil {
			return err
		}
		if obs.SupervisorID != supervisorID {
			return domain.Errorf(domain.KindPermission, "observation belongs to another supervisor")
		}
		if !obs.Status.CanAdvanceTo(next) {
			return errTransition(obs.Status, next)
		}
		updated, err := tx.UpdateObservationStatus(ctx, obs.ID, obs.Status, next, now)
		if err != nil {
			return fmt.Errorf("update observation status: %w", err)
		}
		if !updated {
			return errTransition(obs.Status, next)
		}

		typ := ports.EventObservationOngoing
		if next == domain.ObservationCompleted {
			typ = ports.EventObservationCompleted
		}
		if err := tx.EnqueueEvent(ctx, newEvent(
			typ, entityObservation, obs.ID,
			string(obs.Status), string(next), supervisorID, obs.TraineeID,
			fmt.Sprintf("Your observation on %s is now %s", obs.Date, lower(next)), now,
		)); err != nil {
			return err
		}

		advanced = *obs
		advanced.Status = next
		advanced.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("observation status changed", "observation_id", advanced.ID, "status", advanced.Status)
	return &advanced, nil
}

func errTransition(from, to domain.ObservationStatus) error {
	return domain.Errorf(domain.KindInvalidTransition, "cannot move observation from %s to %s", from, to)
}

// List returns the observations visible to the viewer, resolved for display.
func (s *ObservationService) List(ctx context.Context, viewer domain.Viewer) ([]domain.ObservationView, error) {
	var filter ports.ObservationFilter
	switch viewer.Role {
	case domain.RoleTrainee:
		filter.TraineeID = viewer.ID
	case domain.RoleSupervisor:
		filter.SupervisorID = viewer.ID
	case domain.RoleAdmin:
	default:
		return nil, domain.Errorf(domain.KindPermission, "role %q cannot list observations", viewer.Role)
	}

	records, err := s.store.ListObservations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	now := s.now()
	out := make([]domain.ObservationView, 0, len(records))
	for _, rec := range records {
		out = append(out, normalize.Observation(rec, now))
	}
	return out, nil
}

func loadObservation(ctx context.Context, tx ports.Tx, id string) (*domain.Observation, error) {
	obs, err := tx.ObservationByID(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, domain.Errorf(domain.KindNotFound, "observation %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load observation: %w", err)
	}
	return obs, nil
}

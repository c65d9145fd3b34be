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

type LessonPlanService struct {
	store ports.Store
	now   func() time.Time
}

var _ ports.LessonPlanService = (*LessonPlanService)(nil)

func NewLessonPlanService(store ports.Store) *LessonPlanService {
	return &LessonPlanService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates a PENDING lesson plan. A trainee may own at most one
// PENDING plan at a time.
func (s *LessonPlanService) Submit(
	ctx context.Context,
	traineeID string,
	draft domain.LessonPlanDraft,
) (*domain.LessonPlan, error) {
	if err := validation.Required(map[string]string{"traineeId": traineeID}); err != nil {
		return nil, err
	}
	draft, err := validation.LessonPlanDraft(draft)
	if err != nil {
		return nil, err
	}

	now := s.now()
	plan := domain.LessonPlan{
		ID:          uuid.NewString(),
		TraineeID:   traineeID,
		Title:       draft.Title,
		Subject:     draft.Subject,
		Class:       draft.Class,
		Date:        draft.Date,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		Objectives:  draft.Objectives,
		Activities:  draft.Activities,
		Resources:   draft.Resources,
		AIGenerated: draft.AIGenerated,
		DocumentRef: draft.DocumentRef,
		Status:      domain.LessonPlanPending,
		CreatedAt:   now,
	}

	err = s.store.Atomic(ctx, func(tx ports.Tx) error {
		pending, err := tx.HasPendingLessonPlan(ctx, traineeID)
		if err != nil {
			return fmt.Errorf("check pending lesson plan: %w", err)
		}
		if pending {
			return errPendingExists()
		}
		if err := tx.InsertLessonPlan(ctx, plan); err != nil {
			if errors.Is(err, ports.ErrDuplicate) {
				return errPendingExists()
			}
			return fmt.Errorf("insert lesson plan: %w", err)
		}

		supervisorID, err := tx.SupervisorOf(ctx, traineeID)
		if err != nil {
			return fmt.Errorf("find supervisor: %w", err)
		}
		return tx.EnqueueEvent(ctx, newEvent(
			ports.EventLessonPlanSubmitted, entityLessonPlan, plan.ID,
			"", string(domain.LessonPlanPending), traineeID, supervisorID,
			fmt.Sprintf("New lesson plan %q submitted for review", plan.Title), now,
		))
	})
	if err != nil {
		return nil, err
	}

	logger.Info("lesson plan submitted", "lesson_plan_id", plan.ID, "trainee_id", traineeID)
	return &plan, nil
}

func errPendingExists() error {
	return domain.Errorf(domain.KindConflict, "trainee already has a pending lesson plan")
}

// Review records the supervisor's decision and its feedback together. The
// status change is a compare-and-set on PENDING, so of two racing reviews
// only the first succeeds.
func (s *LessonPlanService) Review(
	ctx context.Context,
	lessonPlanID, supervisorID string,
	decision domain.ReviewDecision,
) (*domain.LessonPlan, *domain.Feedback, error) {
	if err := validation.Required(map[string]string{
		"lessonPlanId": lessonPlanID,
		"supervisorId": supervisorID,
	}); err != nil {
		return nil, nil, err
	}
	decision, err := validation.ReviewDecision(decision)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	var (
		reviewed domain.LessonPlan
		feedback domain.Feedback
	)
	err = s.store.Atomic(ctx, func(tx ports.Tx) error {
		plan, err := loadLessonPlan(ctx, tx, lessonPlanID)
		if err != nil {
			return err
		}
		allowed, err := tx.IsSupervisorOf(ctx, supervisorID, plan.TraineeID)
		if err != nil {
			return fmt.Errorf("check supervision: %w", err)
		}
		if !allowed {
			return domain.Errorf(domain.KindPermission, "supervisor is not assigned to this trainee")
		}
		if plan.Status != domain.LessonPlanPending {
			return errAlreadyReviewed(plan.Status)
		}

		updated, err := tx.UpdateLessonPlanStatus(ctx, plan.ID, domain.LessonPlanPending, decision.Status, now)
		if err != nil {
			return fmt.Errorf("update lesson plan status: %w", err)
		}
		if !updated {
			return errAlreadyReviewed(plan.Status)
		}

		feedback = domain.Feedback{
			ID:           uuid.NewString(),
			LessonPlanID: plan.ID,
			SupervisorID: supervisorID,
			TraineeID:    plan.TraineeID,
			Score:        decision.Score,
			Comments:     decision.Comments,
			CreatedAt:    now,
		}
		if err := tx.InsertFeedback(ctx, feedback); err != nil {
			return fmt.Errorf("insert review feedback: %w", err)
		}

		typ := ports.EventLessonPlanApproved
		if decision.Status == domain.LessonPlanRejected {
			typ = ports.EventLessonPlanRejected
		}
		if err := tx.EnqueueEvent(ctx, newEvent(
			typ, entityLessonPlan, plan.ID,
			string(domain.LessonPlanPending), string(decision.Status), supervisorID, plan.TraineeID,
			fmt.Sprintf("Your lesson plan %q was %s", plan.Title, lower(decision.Status)), now,
		)); err != nil {
			return err
		}

		reviewed = *plan
		reviewed.Status = decision.Status
		reviewed.ReviewedAt = &now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("lesson plan reviewed",
		"lesson_plan_id", reviewed.ID, "supervisor_id", supervisorID, "status", reviewed.Status)
	return &reviewed, &feedback, nil
}

func errAlreadyReviewed(status domain.LessonPlanStatus) error {
	return domain.Errorf(domain.KindInvalidState, "lesson plan is %s, only pending plans can be changed", status)
}

// Delete withdraws a PENDING plan owned by the trainee.
func (s *LessonPlanService) Delete(ctx context.Context, lessonPlanID, traineeID string) (string, error) {
	if err := validation.Required(map[string]string{
		"lessonPlanId": lessonPlanID,
		"traineeId":    traineeID,
	}); err != nil {
		return "", err
	}

	now := s.now()
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		plan, err := loadLessonPlan(ctx, tx, lessonPlanID)
		if err != nil {
			return err
		}
		if plan.TraineeID != traineeID {
			return domain.Errorf(domain.KindPermission, "lesson plan belongs to another trainee")
		}
		if plan.Status != domain.LessonPlanPending {
			return errAlreadyReviewed(plan.Status)
		}
		deleted, err := tx.DeleteLessonPlan(ctx, plan.ID, domain.LessonPlanPending)
		if err != nil {
			return fmt.Errorf("delete lesson plan: %w", err)
		}
		if !deleted {
			return errAlreadyReviewed(plan.Status)
		}

		supervisorID, err := tx.SupervisorOf(ctx, traineeID)
		if err != nil {
			return fmt.Errorf("find supervisor: %w", err)
		}
		return tx.EnqueueEvent(ctx, newEvent(
			ports.EventLessonPlanWithdrawn, entityLessonPlan, plan.ID,
			string(domain.LessonPlanPending), "", traineeID, supervisorID,
			fmt.Sprintf("Lesson plan %q was withdrawn", plan.Title), now,
		))
	})
	if err != nil {
		return "", err
	}

	logger.Info("lesson plan deleted", "lesson_plan_id", lessonPlanID, "trainee_id", traineeID)
	return "Lesson plan deleted successfully", nil
}

// List returns the plans visible to the viewer. An unknown status filter is ignored.
func (s *LessonPlanService) List(ctx context.Context, viewer domain.Viewer, status string) ([]domain.LessonPlan, error) {
	filter := ports.LessonPlanFilter{
		Status: normalize.Status(status, domain.LessonPlanStatuses, ""),
	}
	switch viewer.Role {
	case domain.RoleTrainee:
		filter.TraineeID = viewer.ID
	case domain.RoleSupervisor:
		filter.SupervisorID = viewer.ID
	case domain.RoleAdmin:
	default:
		return nil, domain.Errorf(domain.KindPermission, "role %q cannot list lesson plans", viewer.Role)
	}

	plans, err := s.store.ListLessonPlans(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list lesson plans: %w", err)
	}
	now := s.now()
	out := make([]domain.LessonPlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, normalize.LessonPlan(p, now))
	}
	return out, nil
}

func loadLessonPlan(ctx context.Context, tx ports.Tx, id string) (*domain.LessonPlan, error) {
	plan, err := tx.LessonPlanByID(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, domain.Errorf(domain.KindNotFound, "lesson plan %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load lesson plan: %w", err)
	}
	return plan, nil
}

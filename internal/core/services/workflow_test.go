package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/services"
)

// TestWorkflow_FromSubmissionToFeedback drives one lesson plan through the
// whole practice cycle and checks the notifications each step produces.
func TestWorkflow_FromSubmissionToFeedback(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	plans := services.NewLessonPlanService(store)
	observations := services.NewObservationService(store)
	feedback := services.NewFeedbackService(store)

	plan, err := plans.Submit(ctx, traineeID, validDraft())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = observations.Schedule(ctx, supervisorID, scheduleRequest(plan.ID))
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected scheduling a pending plan to fail the precondition, got %v", err)
	}

	if _, _, err := plans.Review(ctx, plan.ID, supervisorID,
		domain.ReviewDecision{Status: domain.LessonPlanApproved, Comments: "Good", Score: intPtr(8)}); err != nil {
		t.Fatalf("review: %v", err)
	}

	if _, err := plans.Submit(ctx, traineeID, validDraft()); err != nil {
		t.Fatalf("expected a new submission after approval, got %v", err)
	}

	obs, err := observations.Schedule(ctx, supervisorID, scheduleRequest(plan.ID))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	in := domain.ObservationFeedbackInput{Score: intPtr(7), Comments: "Clear explanations"}
	if _, err := feedback.SubmitObservationFeedback(ctx, obs.ID, supervisorID, in); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected feedback before completion to fail, got %v", err)
	}

	for _, next := range []domain.ObservationStatus{domain.ObservationOngoing, domain.ObservationCompleted} {
		if _, err := observations.AdvanceStatus(ctx, obs.ID, supervisorID, next); err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}
	if _, err := observations.AdvanceStatus(ctx, obs.ID, supervisorID, domain.ObservationOngoing); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected going backwards to fail, got %v", err)
	}

	if _, err := feedback.SubmitObservationFeedback(ctx, obs.ID, supervisorID, in); err != nil {
		t.Fatalf("feedback: %v", err)
	}

	var got []ports.EventType
	for _, evt := range store.Events() {
		got = append(got, evt.Type)
	}
	want := []ports.EventType{
		ports.EventLessonPlanSubmitted,
		ports.EventLessonPlanApproved,
		ports.EventLessonPlanSubmitted,
		ports.EventObservationScheduled,
		ports.EventObservationOngoing,
		ports.EventObservationCompleted,
		ports.EventFeedbackSubmitted,
	}
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	views, err := feedback.List(ctx, domain.Viewer{ID: traineeID, Role: domain.RoleTrainee})
	if err != nil {
		t.Fatalf("list feedback: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("expected review and observation feedback, got %d entries", len(views))
	}
}

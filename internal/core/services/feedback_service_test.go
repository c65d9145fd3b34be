package services_test

import (
	"context"
	"testing"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/services"
)

func TestFeedbackService_SubmitObservationFeedback(t *testing.T) {
	tests := []struct {
		name          string
		observationID string
		supervisorID  string
		in            domain.ObservationFeedbackInput
		expectedKind  domain.ErrorKind
	}{
		{
			name:          "scores_completed_observation",
			observationID: "obs-completed",
			supervisorID:  supervisorID,
			in:            domain.ObservationFeedbackInput{Score: intPtr(7), Comments: "Good pacing"},
		},
		{
			name:          "zero_is_a_valid_score",
			observationID: "obs-completed",
			supervisorID:  supervisorID,
			in:            domain.ObservationFeedbackInput{Score: intPtr(0), Comments: "Did not happen as planned"},
		},
		{
			name:          "ongoing_observation",
			observationID: "obs-ongoing",
			supervisorID:  supervisorID,
			in:            domain.ObservationFeedbackInput{Score: intPtr(7), Comments: "Too early"},
			expectedKind:  domain.KindPrecondition,
		},
		{
			name:          "score_above_ten",
			observationID: "obs-completed",
			supervisorID:  supervisorID,
			in:            domain.ObservationFeedbackInput{Score: intPtr(11), Comments: "Great"},
			expectedKind:  domain.KindValidation,
		},
		{
			name:          "missing_score",
			observationID: "obs-completed",
			supervisorID:  supervisorID,
			in:            domain.ObservationFeedbackInput{Comments: "Great"},
			expectedKind:  domain.KindValidation,
		},
		{
			name:          "other_supervisor",
			observationID: "obs-completed",
			supervisorID:  otherSupervisor,
			in:            domain.ObservationFeedbackInput{Score: intPtr(7), Comments: "Good"},
			expectedKind:  domain.KindPermission,
		},
		{
			name:          "unknown_observation",
			observationID: "obs-missing",
			supervisorID:  supervisorID,
			in:            domain.ObservationFeedbackInput{Score: intPtr(7), Comments: "Good"},
			expectedKind:  domain.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			seedObservation(store, "obs-completed", domain.ObservationCompleted)
			seedObservation(store, "obs-ongoing", domain.ObservationOngoing)
			svc := services.NewFeedbackService(store)

			fb, err := svc.SubmitObservationFeedback(context.Background(), tt.observationID, tt.supervisorID, tt.in)

			assertKind(t, err, tt.expectedKind)
			if tt.expectedKind != "" {
				if len(store.FeedbackEntries()) != 0 {
					t.Errorf("expected no feedback, got %d", len(store.FeedbackEntries()))
				}
				return
			}
			if fb.ObservationID != tt.observationID || fb.LessonPlanID != "" || *fb.Score != *tt.in.Score {
				t.Errorf("unexpected feedback %+v", fb)
			}
			events := store.Events()
			if len(events) != 1 || events[0].Type != ports.EventFeedbackSubmitted || events[0].RecipientID != traineeID {
				t.Errorf("unexpected events %+v", events)
			}
		})
	}
}

func TestFeedbackService_SubmitObservationFeedback_AllowsRepeatedEntries(t *testing.T) {
	store := newStore()
	seedObservation(store, "obs-completed", domain.ObservationCompleted)
	svc := services.NewFeedbackService(store)

	for i := 0; i < 2; i++ {
		in := domain.ObservationFeedbackInput{Score: intPtr(6 + i), Comments: "Follow-up"}
		if _, err := svc.SubmitObservationFeedback(context.Background(), "obs-completed", supervisorID, in); err != nil {
			t.Fatalf("submission %d failed: %v", i+1, err)
		}
	}
	if n := len(store.FeedbackEntries()); n != 2 {
		t.Errorf("expected 2 feedback entries, got %d", n)
	}
}

func TestFeedbackService_SubmitStudentEvaluation(t *testing.T) {
	valid := func() domain.EvaluationInput {
		return domain.EvaluationInput{
			TPAssignmentID: assignmentID,
			TraineeID:      traineeID,
			SupervisorID:   supervisorID,
			Score:          intPtr(85),
			Comments:       "Solid placement",
		}
	}

	tests := []struct {
		name         string
		in           func() domain.EvaluationInput
		expectedKind domain.ErrorKind
	}{
		{name: "records_evaluation", in: valid},
		{
			name: "score_above_hundred",
			in: func() domain.EvaluationInput {
				in := valid()
				in.Score = intPtr(101)
				return in
			},
			expectedKind: domain.KindValidation,
		},
		{
			name: "unknown_assignment",
			in: func() domain.EvaluationInput {
				in := valid()
				in.TPAssignmentID = "tp-missing"
				return in
			},
			expectedKind: domain.KindNotFound,
		},
		{
			name: "trainee_not_on_assignment",
			in: func() domain.EvaluationInput {
				in := valid()
				in.TraineeID = otherTrainee
				return in
			},
			expectedKind: domain.KindPermission,
		},
		{
			name: "supervisor_not_on_assignment",
			in: func() domain.EvaluationInput {
				in := valid()
				in.SupervisorID = otherSupervisor
				return in
			},
			expectedKind: domain.KindPermission,
		},
		{
			name: "missing_assignment_id",
			in: func() domain.EvaluationInput {
				in := valid()
				in.TPAssignmentID = " "
				return in
			},
			expectedKind: domain.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			svc := services.NewFeedbackService(store)

			ev, err := svc.SubmitStudentEvaluation(context.Background(), tt.in())

			assertKind(t, err, tt.expectedKind)
			if tt.expectedKind != "" {
				if len(store.Evaluations()) != 0 {
					t.Errorf("expected no evaluation, got %d", len(store.Evaluations()))
				}
				return
			}
			if ev.Score != 85 || ev.TPAssignmentID != assignmentID {
				t.Errorf("unexpected evaluation %+v", ev)
			}
			events := store.Events()
			if len(events) != 1 || events[0].Type != ports.EventEvaluationSubmitted {
				t.Errorf("unexpected events %+v", events)
			}
		})
	}
}

func TestFeedbackService_List(t *testing.T) {
	store := newStore()
	store.SeedFeedback(domain.Feedback{ID: "fb-1", ObservationID: "obs-1", SupervisorID: supervisorID, TraineeID: traineeID, Comments: "  Fine  ", CreatedAt: seededAt})
	store.SeedFeedback(domain.Feedback{ID: "fb-2", LessonPlanID: "lp-1", SupervisorID: otherSupervisor, TraineeID: otherTrainee, Comments: "Ok"})
	svc := services.NewFeedbackService(store)

	entries, err := svc.List(context.Background(), domain.Viewer{ID: traineeID, Role: domain.RoleTrainee})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "fb-1" || entries[0].Comments != "Fine" {
		t.Errorf("unexpected entries %+v", entries)
	}

	entries, err = svc.List(context.Background(), domain.Viewer{ID: otherSupervisor, Role: domain.RoleSupervisor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "fb-2" || entries[0].CreatedAt.IsZero() {
		t.Errorf("unexpected entries %+v", entries)
	}
}

package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/mocks"
)

const (
	traineeID       = "trainee-1"
	otherTrainee    = "trainee-2"
	supervisorID    = "supervisor-1"
	otherSupervisor = "supervisor-2"
	assignmentID    = "tp-1"
)

var seededAt = time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

// newStore seeds two placements: trainee-1 under supervisor-1 and
// trainee-2 under supervisor-2.
func newStore() *mocks.MemoryStore {
	store := mocks.NewMemoryStore()
	store.SeedAssignment(domain.TPAssignment{
		ID: assignmentID, TraineeID: traineeID, SupervisorID: supervisorID,
		School: "Riverside Primary", StartDate: "2025-02-01", EndDate: "2025-06-30", CreatedAt: seededAt,
	})
	store.SeedAssignment(domain.TPAssignment{
		ID: "tp-2", TraineeID: otherTrainee, SupervisorID: otherSupervisor,
		School: "Hillside Academy", StartDate: "2025-02-01", EndDate: "2025-06-30", CreatedAt: seededAt,
	})
	store.SeedTrainee(domain.Trainee{ID: traineeID, DisplayName: "Ada Trainee"})
	return store
}

func validDraft() domain.LessonPlanDraft {
	return domain.LessonPlanDraft{
		Title:      "Fractions",
		Subject:    "Mathematics",
		Class:      "Year 4",
		Date:       "2025-03-01",
		StartTime:  "09:00",
		EndTime:    "10:00",
		Objectives: "Compare simple fractions",
		Activities: "Pizza slicing",
		Resources:  "Paper plates",
	}
}

func seedPlan(store *mocks.MemoryStore, id, trainee string, status domain.LessonPlanStatus) domain.LessonPlan {
	p := domain.LessonPlan{
		ID: id, TraineeID: trainee, Title: "Fractions", Subject: "Mathematics", Class: "Year 4",
		Date: "2025-03-01", StartTime: "09:00", EndTime: "10:00",
		Objectives: "o", Activities: "a", Resources: "r",
		Status: status, CreatedAt: seededAt,
	}
	store.SeedLessonPlan(p)
	return p
}

func seedObservation(store *mocks.MemoryStore, id string, status domain.ObservationStatus) domain.Observation {
	o := domain.Observation{
		ID: id, SupervisorID: supervisorID, TraineeID: traineeID, LessonPlanID: "lp-approved",
		Date: "2025-03-05", StartTime: "09:00", EndTime: "10:00",
		Status: status, CreatedAt: seededAt, UpdatedAt: seededAt,
	}
	store.SeedObservation(o)
	return o
}

func intPtr(n int) *int { return &n }

// assertKind fails unless err is a domain error of the wanted kind. An empty
// want asserts success.
func assertKind(t *testing.T, err error, want domain.ErrorKind) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected %s error but got none", want)
	}
	if got := domain.KindOf(err); got != want {
		t.Fatalf("expected %s error, got %q (%v)", want, got, err)
	}
}

func fieldsOf(err error) map[string]string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

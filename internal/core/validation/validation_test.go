package validation

import (
	"errors"
	"testing"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	return de.Fields
}

func TestLessonPlanDraft(t *testing.T) {
	valid := domain.LessonPlanDraft{
		Title: " Fractions ", Subject: "Mathematics", Class: "Year 4", Date: "2025-03-01",
		StartTime: "2025-03-01T09:00:00.000Z", EndTime: "10:00",
		Objectives: "o", Activities: "a", Resources: "r",
	}

	got, err := LessonPlanDraft(valid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Fractions" || got.StartTime != "09:00" {
		t.Errorf("expected trimmed title and canonical time, got %q %q", got.Title, got.StartTime)
	}

	empty := domain.LessonPlanDraft{StartTime: "9 o'clock"}
	_, err = LessonPlanDraft(empty)
	f := fields(t, err)
	for _, name := range []string{"title", "subject", "class", "date", "objectives", "activities", "resources", "startTime"} {
		if _, ok := f[name]; !ok {
			t.Errorf("expected field %q to be reported, got %v", name, f)
		}
	}
	if f["title"] != "is required" || f["startTime"] != "must be a time in HH:MM format" {
		t.Errorf("unexpected messages %v", f)
	}
}

func TestLessonPlanDraft_TimesAreOptional(t *testing.T) {
	d := domain.LessonPlanDraft{
		Title: "Fractions", Subject: "Mathematics", Class: "Year 4", Date: "2025-03-01",
		Objectives: "o", Activities: "a", Resources: "r",
	}
	if _, err := LessonPlanDraft(d); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReviewDecision(t *testing.T) {
	score := 12
	_, err := ReviewDecision(domain.ReviewDecision{Status: "MAYBE", Comments: "", Score: &score})
	f := fields(t, err)
	if f["status"] != "must be one of APPROVED, REJECTED" {
		t.Errorf("unexpected status message %q", f["status"])
	}
	if f["comments"] != "is required" || f["score"] != "must be at most 10" {
		t.Errorf("unexpected messages %v", f)
	}
}

func TestEvaluation_ScoreBounds(t *testing.T) {
	for _, tt := range []struct {
		score int
		ok    bool
	}{{0, true}, {100, true}, {-1, false}, {101, false}} {
		score := tt.score
		_, err := Evaluation(domain.EvaluationInput{
			TPAssignmentID: "tp-1", TraineeID: "t", SupervisorID: "s", Score: &score,
		})
		if (err == nil) != tt.ok {
			t.Errorf("score %d: expected ok=%v, got %v", tt.score, tt.ok, err)
		}
	}
}

func TestRequired(t *testing.T) {
	if err := Required(map[string]string{"id": "x"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	f := fields(t, Required(map[string]string{"id": " ", "other": "y"}))
	if len(f) != 1 || f["id"] != "is required" {
		t.Errorf("unexpected fields %v", f)
	}
}

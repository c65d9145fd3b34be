package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

func TestWhereBuildsPositionalArgs(t *testing.T) {
	var w where
	if w.String() != "" {
		t.Errorf("expected empty clause, got %q", w.String())
	}
	w.add("a = ?", "x")
	w.add("b = ?", "y")

	want := " WHERE a = $1 AND b = $2"
	if w.String() != want {
		t.Errorf("expected %q, got %q", want, w.String())
	}
	if len(w.args) != 2 {
		t.Errorf("expected 2 args, got %d", len(w.args))
	}
}

func TestTranslate(t *testing.T) {
	if !errors.Is(translate(sql.ErrNoRows), ports.ErrNotFound) {
		t.Error("expected no rows to become ErrNotFound")
	}
	if !errors.Is(translate(&pq.Error{Code: "23505"}), ports.ErrDuplicate) {
		t.Error("expected unique violation to become ErrDuplicate")
	}
	if translate(nil) != nil {
		t.Error("expected nil to stay nil")
	}
}

// openTestDB connects to TEST_DB_CONNECTION_STRING and applies the schema.
// Tests using it are skipped when the variable is not set.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbURL := os.Getenv("TEST_DB_CONNECTION_STRING")
	if dbURL == "" {
		t.Skip("TEST_DB_CONNECTION_STRING not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	for _, table := range []string{"outbox_events", "evaluations", "feedback", "observations", "lesson_plans", "tp_assignments", "trainees"} {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("TRUNCATE %s CASCADE", table)); err != nil {
			t.Fatalf("Failed to truncate %s: %v", table, err)
		}
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO tp_assignments (id, trainee_id, supervisor_id, school) VALUES ('tp-1', 'trainee-1', 'supervisor-1', 'Riverside Primary');
		INSERT INTO trainees (id, display_name) VALUES ('trainee-1', 'Ada Trainee')`)
	if err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	return db
}

func testPlan(status domain.LessonPlanStatus) domain.LessonPlan {
	return domain.LessonPlan{
		ID: uuid.NewString(), TraineeID: "trainee-1", Title: "Fractions", Subject: "Mathematics", Class: "Year 4",
		Date: "2025-03-01", StartTime: "09:00", Objectives: "o", Activities: "a", Resources: "r",
		Status: status, CreatedAt: time.Now().UTC(),
	}
}

func TestStore_LessonPlanLifecycle(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	plan := testPlan(domain.LessonPlanPending)

	err := store.Atomic(ctx, func(tx ports.Tx) error {
		if err := tx.InsertLessonPlan(ctx, plan); err != nil {
			return err
		}
		return tx.EnqueueEvent(ctx, ports.TransitionEvent{
			ID: uuid.NewString(), Type: ports.EventLessonPlanSubmitted, Entity: "lesson_plan",
			EntityID: plan.ID, OccurredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	err = store.Atomic(ctx, func(tx ports.Tx) error {
		return tx.InsertLessonPlan(ctx, testPlan(domain.LessonPlanPending))
	})
	if !errors.Is(err, ports.ErrDuplicate) {
		t.Fatalf("expected second pending plan to violate the unique index, got %v", err)
	}

	err = store.Atomic(ctx, func(tx ports.Tx) error {
		got, err := tx.LessonPlanByID(ctx, plan.ID)
		if err != nil {
			return err
		}
		if got.StartTime != "09:00" || got.EndTime != "" || got.Date != "2025-03-01" {
			return fmt.Errorf("unexpected round trip %+v", got)
		}
		ok, err := tx.UpdateLessonPlanStatus(ctx, plan.ID, domain.LessonPlanPending, domain.LessonPlanApproved, time.Now())
		if err != nil || !ok {
			return fmt.Errorf("first update: ok=%v err=%v", ok, err)
		}
		ok, err = tx.UpdateLessonPlanStatus(ctx, plan.ID, domain.LessonPlanPending, domain.LessonPlanRejected, time.Now())
		if err != nil || ok {
			return fmt.Errorf("stale update must not apply: ok=%v err=%v", ok, err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	plans, err := store.ListLessonPlans(ctx, ports.LessonPlanFilter{SupervisorID: "supervisor-1", Status: domain.LessonPlanApproved})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(plans) != 1 || plans[0].ReviewedAt == nil {
		t.Errorf("expected the approved plan, got %+v", plans)
	}

	var outbox int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM outbox_events").Scan(&outbox); err != nil {
		t.Fatal(err)
	}
	if outbox != 1 {
		t.Errorf("expected 1 outbox event, got %d", outbox)
	}
}

func TestStore_AtomicRollsBack(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Atomic(ctx, func(tx ports.Tx) error {
		if err := tx.InsertLessonPlan(ctx, testPlan(domain.LessonPlanPending)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	plans, err := store.ListLessonPlans(ctx, ports.LessonPlanFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 0 {
		t.Errorf("expected rollback, found %d plans", len(plans))
	}
}

func TestStore_ListObservationsResolvesReferences(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	plan := testPlan(domain.LessonPlanApproved)
	now := time.Now().UTC()

	err := store.Atomic(ctx, func(tx ports.Tx) error {
		if err := tx.InsertLessonPlan(ctx, plan); err != nil {
			return err
		}
		for _, o := range []domain.Observation{
			{ID: "obs-1", SupervisorID: "supervisor-1", TraineeID: "trainee-1", LessonPlanID: plan.ID,
				Date: "2025-03-05", StartTime: "09:00", EndTime: "10:00", Status: domain.ObservationScheduled, CreatedAt: now, UpdatedAt: now},
			{ID: "obs-2", SupervisorID: "supervisor-1", TraineeID: "trainee-x", LessonPlanID: "gone",
				Date: "2025-03-06", Status: domain.ObservationScheduled, CreatedAt: now, UpdatedAt: now},
		} {
			if err := tx.InsertObservation(ctx, o); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	records, err := store.ListObservations(ctx, ports.ObservationFilter{SupervisorID: "supervisor-1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	byID := map[string]domain.ObservationRecord{}
	for _, r := range records {
		byID[r.ID] = r
	}
	if r := byID["obs-1"]; r.LessonPlanTitle != "Fractions" || r.TraineeName != "Ada Trainee" || r.StartTime != "09:00" {
		t.Errorf("unexpected record %+v", r)
	}
	if r := byID["obs-2"]; r.LessonPlanTitle != "" || r.TraineeName != "" {
		t.Errorf("expected empty references for dangling record, got %+v", r)
	}
}

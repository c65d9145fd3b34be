package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/normalize"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

const lessonPlanColumns = `lp.id, lp.trainee_id,
	COALESCE(lp.title, ''), COALESCE(lp.subject, ''), COALESCE(lp.class, ''),
	COALESCE(to_char(lp.date, 'YYYY-MM-DD'), ''),
	COALESCE(to_char(lp.start_time, 'HH24:MI'), ''),
	COALESCE(to_char(lp.end_time, 'HH24:MI'), ''),
	COALESCE(lp.objectives, ''), COALESCE(lp.activities, ''), COALESCE(lp.resources, ''),
	lp.ai_generated, COALESCE(lp.document_ref, ''), lp.status, lp.created_at, lp.reviewed_at`

func scanLessonPlan(row scanner) (*domain.LessonPlan, error) {
	var (
		p          domain.LessonPlan
		status     string
		reviewedAt sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.TraineeID,
		&p.Title, &p.Subject, &p.Class,
		&p.Date, &p.StartTime, &p.EndTime,
		&p.Objectives, &p.Activities, &p.Resources,
		&p.AIGenerated, &p.DocumentRef, &status, &p.CreatedAt, &reviewedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = normalize.Status(status, domain.LessonPlanStatuses, domain.LessonPlanPending)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		p.ReviewedAt = &t
	}
	return &p, nil
}

// LessonPlanByID locks the plan row until the transaction ends.
func (t *sqlTx) LessonPlanByID(ctx context.Context, id string) (*domain.LessonPlan, error) {
	row := t.tx.QueryRowContext(ctx,
		"SELECT "+lessonPlanColumns+" FROM lesson_plans lp WHERE lp.id = $1 FOR UPDATE",
		id,
	)
	plan, err := scanLessonPlan(row)
	if err != nil {
		return nil, translate(err)
	}
	return plan, nil
}

func (t *sqlTx) HasPendingLessonPlan(ctx context.Context, traineeID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM lesson_plans WHERE trainee_id = $1 AND status = $2)",
		traineeID, domain.LessonPlanPending,
	).Scan(&exists)
	return exists, err
}

func (t *sqlTx) InsertLessonPlan(ctx context.Context, p domain.LessonPlan) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO lesson_plans (
			id, trainee_id, title, subject, class, date, start_time, end_time,
			objectives, activities, resources, ai_generated, document_ref, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::time, $8::time, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.TraineeID, p.Title, p.Subject, p.Class, p.Date,
		nullIfEmpty(p.StartTime), nullIfEmpty(p.EndTime),
		p.Objectives, p.Activities, p.Resources, p.AIGenerated, nullIfEmpty(p.DocumentRef),
		p.Status, p.CreatedAt,
	)
	return translate(err)
}

func (t *sqlTx) UpdateLessonPlanStatus(ctx context.Context, id string, from, to domain.LessonPlanStatus, at time.Time) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE lesson_plans SET status = $1, reviewed_at = $2 WHERE id = $3 AND status = $4",
		to, at, id, from,
	)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (t *sqlTx) DeleteLessonPlan(ctx context.Context, id string, expected domain.LessonPlanStatus) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM lesson_plans WHERE id = $1 AND status = $2",
		id, expected,
	)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) ListLessonPlans(ctx context.Context, filter ports.LessonPlanFilter) ([]domain.LessonPlan, error) {
	var w where
	if filter.TraineeID != "" {
		w.add("lp.trainee_id = ?", filter.TraineeID)
	}
	if filter.SupervisorID != "" {
		w.add(`EXISTS (SELECT 1 FROM tp_assignments a
			WHERE a.trainee_id = lp.trainee_id AND a.supervisor_id = ?)`, filter.SupervisorID)
	}
	if filter.Status != "" {
		w.add("lp.status = ?", filter.Status)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+lessonPlanColumns+" FROM lesson_plans lp"+w.String()+" ORDER BY lp.created_at DESC",
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query lesson plans: %w", err)
	}
	defer rows.Close()

	var plans []domain.LessonPlan
	for rows.Next() {
		p, err := scanLessonPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

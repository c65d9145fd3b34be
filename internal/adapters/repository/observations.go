package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/normalize"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

const observationColumns = `o.id, o.supervisor_id, o.trainee_id, o.lesson_plan_id,
	COALESCE(to_char(o.date, 'YYYY-MM-DD'), ''),
	COALESCE(to_char(o.start_time, 'HH24:MI'), ''),
	COALESCE(to_char(o.end_time, 'HH24:MI'), ''),
	o.status, o.created_at, o.updated_at`

func observationDest(o *domain.Observation, status *string) []any {
	return []any{
		&o.ID, &o.SupervisorID, &o.TraineeID, &o.LessonPlanID,
		&o.Date, &o.StartTime, &o.EndTime,
		status, &o.CreatedAt, &o.UpdatedAt,
	}
}

// ObservationByID locks the observation row until the transaction ends.
func (t *sqlTx) ObservationByID(ctx context.Context, id string) (*domain.Observation, error) {
	var (
		o      domain.Observation
		status string
	)
	err := t.tx.QueryRowContext(ctx,
		"SELECT "+observationColumns+" FROM observations o WHERE o.id = $1 FOR UPDATE",
		id,
	).Scan(observationDest(&o, &status)...)
	if err != nil {
		return nil, translate(err)
	}
	o.Status = normalize.Status(status, domain.ObservationStatuses, domain.ObservationScheduled)
	return &o, nil
}

func (t *sqlTx) InsertObservation(ctx context.Context, o domain.Observation) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO observations (
			id, supervisor_id, trainee_id, lesson_plan_id, date, start_time, end_time,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6::time, $7::time, $8, $9, $10)`,
		o.ID, o.SupervisorID, o.TraineeID, o.LessonPlanID, o.Date,
		nullIfEmpty(o.StartTime), nullIfEmpty(o.EndTime),
		o.Status, o.CreatedAt, o.UpdatedAt,
	)
	return translate(err)
}

func (t *sqlTx) UpdateObservationStatus(ctx context.Context, id string, from, to domain.ObservationStatus, at time.Time) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE observations SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		to, at, id, from,
	)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// ListObservations joins each observation with its lesson plan title and
// trainee name. Missing join targets come back as empty strings.
func (s *Store) ListObservations(ctx context.Context, filter ports.ObservationFilter) ([]domain.ObservationRecord, error) {
	var w where
	if filter.TraineeID != "" {
		w.add("o.trainee_id = ?", filter.TraineeID)
	}
	if filter.SupervisorID != "" {
		w.add("o.supervisor_id = ?", filter.SupervisorID)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+observationColumns+`, COALESCE(lp.title, ''), COALESCE(t.display_name, '')
		FROM observations o
		LEFT JOIN lesson_plans lp ON lp.id = o.lesson_plan_id
		LEFT JOIN trainees t ON t.id = o.trainee_id`+w.String()+" ORDER BY o.created_at DESC",
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var records []domain.ObservationRecord
	for rows.Next() {
		var (
			rec    domain.ObservationRecord
			status string
		)
		dest := append(observationDest(&rec.Observation, &status), &rec.LessonPlanTitle, &rec.TraineeName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		rec.Status = domain.ObservationStatus(status)
		records = append(records, rec)
	}
	return records, rows.Err()
}

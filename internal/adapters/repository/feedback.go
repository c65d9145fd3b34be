package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

func (t *sqlTx) InsertFeedback(ctx context.Context, fb domain.Feedback) error {
	var score sql.NullInt64
	if fb.Score != nil {
		score = sql.NullInt64{Int64: int64(*fb.Score), Valid: true}
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO feedback (
			id, observation_id, lesson_plan_id, supervisor_id, trainee_id, score, comments, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		fb.ID, nullIfEmpty(fb.ObservationID), nullIfEmpty(fb.LessonPlanID),
		fb.SupervisorID, fb.TraineeID, score, fb.Comments, fb.CreatedAt,
	)
	return translate(err)
}

func (t *sqlTx) InsertEvaluation(ctx context.Context, ev domain.Evaluation) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO evaluations (
			id, tp_assignment_id, trainee_id, supervisor_id, score, comments, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ev.ID, ev.TPAssignmentID, ev.TraineeID, ev.SupervisorID, ev.Score, ev.Comments, ev.CreatedAt,
	)
	return translate(err)
}

func (s *Store) ListFeedback(ctx context.Context, filter ports.FeedbackFilter) ([]domain.Feedback, error) {
	var w where
	if filter.TraineeID != "" {
		w.add("trainee_id = ?", filter.TraineeID)
	}
	if filter.SupervisorID != "" {
		w.add("supervisor_id = ?", filter.SupervisorID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(observation_id, ''), COALESCE(lesson_plan_id, ''),
			supervisor_id, trainee_id, score, comments, created_at
		FROM feedback`+w.String()+" ORDER BY created_at DESC",
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var entries []domain.Feedback
	for rows.Next() {
		var (
			fb    domain.Feedback
			score sql.NullInt64
		)
		if err := rows.Scan(&fb.ID, &fb.ObservationID, &fb.LessonPlanID,
			&fb.SupervisorID, &fb.TraineeID, &score, &fb.Comments, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			fb.Score = &v
		}
		entries = append(entries, fb)
	}
	return entries, rows.Err()
}

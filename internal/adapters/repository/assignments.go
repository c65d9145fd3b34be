package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
)

func (t *sqlTx) AssignmentByID(ctx context.Context, id string) (*domain.TPAssignment, error) {
	var a domain.TPAssignment
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, trainee_id, supervisor_id, school,
			COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''),
			COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''),
			created_at
		FROM tp_assignments WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.TraineeID, &a.SupervisorID, &a.School, &a.StartDate, &a.EndDate, &a.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (t *sqlTx) IsSupervisorOf(ctx context.Context, supervisorID, traineeID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM tp_assignments WHERE supervisor_id = $1 AND trainee_id = $2)",
		supervisorID, traineeID,
	).Scan(&exists)
	return exists, err
}

// SupervisorOf returns the supervisor of the trainee's most recent placement.
func (t *sqlTx) SupervisorOf(ctx context.Context, traineeID string) (string, error) {
	var supervisorID string
	err := t.tx.QueryRowContext(ctx,
		"SELECT supervisor_id FROM tp_assignments WHERE trainee_id = $1 ORDER BY created_at DESC LIMIT 1",
		traineeID,
	).Scan(&supervisorID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return supervisorID, err
}

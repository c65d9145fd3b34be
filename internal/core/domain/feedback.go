package domain

import "time"

const (
	ObservationScoreMax = 10
	EvaluationScoreMax  = 100
)

// Feedback is a supervisor's score and comments on either a completed
// observation or a reviewed lesson plan. Exactly one reference is set.
type Feedback struct {
	ID            string    `json:"id"`
	ObservationID string    `json:"observationId,omitempty"`
	LessonPlanID  string    `json:"lessonPlanId,omitempty"`
	SupervisorID  string    `json:"supervisorId"`
	TraineeID     string    `json:"traineeId"`
	Score         *int      `json:"score,omitempty"`
	Comments      string    `json:"comments"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Evaluation is the 0-100 placement grade tied to a TP assignment.
// It is scored independently from observation feedback.
type Evaluation struct {
	ID             string    `json:"id"`
	TPAssignmentID string    `json:"tpAssignmentId"`
	TraineeID      string    `json:"traineeId"`
	SupervisorID   string    `json:"supervisorId"`
	Score          int       `json:"score"`
	Comments       string    `json:"comments,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ObservationFeedbackInput struct {
	Score    *int   `json:"score" validate:"required,min=0,max=10"`
	Comments string `json:"comments" validate:"notblank,max=4000"`
}

type EvaluationInput struct {
	TPAssignmentID string `json:"tpAssignmentId" validate:"notblank"`
	TraineeID      string `json:"traineeId" validate:"notblank"`
	SupervisorID   string `json:"supervisorId" validate:"notblank"`
	Score          *int   `json:"score" validate:"required,min=0,max=100"`
	Comments       string `json:"comments,omitempty" validate:"omitempty,max=4000"`
}

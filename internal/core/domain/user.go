package domain

import "time"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleTrainee    Role = "TRAINEE"
)

// Viewer is the authenticated caller of an operation.
type Viewer struct {
	ID   string
	Role Role
}

type Trainee struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// TPAssignment links a trainee, a school and a supervisor for a training period.
type TPAssignment struct {
	ID           string    `json:"id"`
	TraineeID    string    `json:"traineeId"`
	SupervisorID string    `json:"supervisorId"`
	School       string    `json:"school"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	CreatedAt    time.Time `json:"createdAt"`
}

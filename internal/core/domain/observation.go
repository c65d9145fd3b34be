package domain

import "time"

type ObservationStatus string

const (
	ObservationScheduled ObservationStatus = "SCHEDULED"
	ObservationOngoing   ObservationStatus = "ONGOING"
	ObservationCompleted ObservationStatus = "COMPLETED"
)

// ObservationStatuses lists every known observation status in execution order.
var ObservationStatuses = []ObservationStatus{ObservationScheduled, ObservationOngoing, ObservationCompleted}

func (s ObservationStatus) rank() int {
	for i, known := range ObservationStatuses {
		if s == known {
			return i
		}
	}
	return -1
}

// CanAdvanceTo reports whether next is strictly ahead of s.
// SCHEDULED may jump straight to COMPLETED.
func (s ObservationStatus) CanAdvanceTo(next ObservationStatus) bool {
	from, to := s.rank(), next.rank()
	if from < 0 || to < 0 {
		return false
	}
	return to > from
}

type Observation struct {
	ID           string            `json:"id"`
	SupervisorID string            `json:"supervisorId"`
	TraineeID    string            `json:"traineeId"`
	LessonPlanID string            `json:"lessonPlanId"`
	Date         string            `json:"date"`
	StartTime    string            `json:"startTime"`
	EndTime      string            `json:"endTime"`
	Status       ObservationStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// ObservationRecord is an observation joined with its display references.
// Either reference is empty when the join target is missing.
type ObservationRecord struct {
	Observation
	LessonPlanTitle string
	TraineeName     string
}

// ObservationView is the display-ready form of an observation.
type ObservationView struct {
	Observation
	LessonPlanTitle string `json:"lessonPlanTitle"`
	TraineeName     string `json:"traineeName"`
}

type ScheduleRequest struct {
	LessonPlanID string `json:"lessonPlanId" validate:"notblank"`
	TraineeID    string `json:"traineeId" validate:"notblank"`
	Date         string `json:"date" validate:"required,ymd"`
	StartTime    string `json:"startTime" validate:"required,hhmm"`
	EndTime      string `json:"endTime" validate:"required,hhmm"`
}

// StatusUpdate only requires a status. Whether it is reachable is decided by
// CanAdvanceTo, so unknown and backward values are invalid transitions.
type StatusUpdate struct {
	Status ObservationStatus `json:"status" validate:"required"`
}

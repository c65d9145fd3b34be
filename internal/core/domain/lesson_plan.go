package domain

import "time"

type LessonPlanStatus string

const (
	LessonPlanPending  LessonPlanStatus = "PENDING"
	LessonPlanApproved LessonPlanStatus = "APPROVED"
	LessonPlanRejected LessonPlanStatus = "REJECTED"
)

// LessonPlanStatuses lists every known lesson plan status.
var LessonPlanStatuses = []LessonPlanStatus{LessonPlanPending, LessonPlanApproved, LessonPlanRejected}

// Terminal reports whether a plan in this status has been reviewed.
func (s LessonPlanStatus) Terminal() bool {
	return s == LessonPlanApproved || s == LessonPlanRejected
}

type LessonPlan struct {
	ID          string           `json:"id"`
	TraineeID   string           `json:"traineeId"`
	Title       string           `json:"title"`
	Subject     string           `json:"subject"`
	Class       string           `json:"class"`
	Date        string           `json:"date"`
	StartTime   string           `json:"startTime"`
	EndTime     string           `json:"endTime"`
	Objectives  string           `json:"objectives"`
	Activities  string           `json:"activities"`
	Resources   string           `json:"resources"`
	AIGenerated bool             `json:"aiGenerated"`
	DocumentRef string           `json:"documentRef,omitempty"`
	Status      LessonPlanStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	ReviewedAt  *time.Time       `json:"reviewedAt,omitempty"`
}

// LessonPlanDraft is what a trainee submits for review.
type LessonPlanDraft struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Subject     string `json:"subject" validate:"notblank,max=120"`
	Class       string `json:"class" validate:"notblank,max=60"`
	Date        string `json:"date" validate:"required,ymd"`
	StartTime   string `json:"startTime" validate:"omitempty,hhmm"`
	EndTime     string `json:"endTime" validate:"omitempty,hhmm"`
	Objectives  string `json:"objectives" validate:"notblank"`
	Activities  string `json:"activities" validate:"notblank"`
	Resources   string `json:"resources" validate:"notblank"`
	AIGenerated bool   `json:"aiGenerated"`
	DocumentRef string `json:"documentRef,omitempty" validate:"omitempty,max=500"`
}

// ReviewDecision is a supervisor's verdict on a pending lesson plan.
type ReviewDecision struct {
	Status   LessonPlanStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Comments string           `json:"comments" validate:"notblank,max=4000"`
	Score    *int             `json:"score,omitempty" validate:"omitempty,min=0,max=10"`
}

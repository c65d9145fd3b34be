// Package normalize canonicalizes values at the workflow boundary. Every
// function is pure, total and idempotent.
package normalize

import (
	"strings"
	"time"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	Untitled          = "Untitled"
	Unknown           = "Unknown"
	UnknownLessonPlan = "Unknown Lesson Plan"
)

// Time returns the HH:MM portion of a bare "HH:MM[:SS]" string or of a full
// timestamp such as "2025-01-01T09:00:00.000Z". The wall-clock digits are
// taken as written, without zone conversion. Unparsable input yields "".
func Time(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if i := strings.IndexAny(s, "T "); i >= 0 {
		if Date(s[:i]) == "" {
			return ""
		}
		s = s[i+1:]
	}
	if len(s) < 5 {
		return ""
	}
	hhmm := s[:5]
	if _, err := time.Parse(TimeLayout, hhmm); err != nil {
		return ""
	}
	if rest := s[5:]; rest != "" && !strings.ContainsRune(":.Z+-", rune(rest[0])) {
		return ""
	}
	return hhmm
}

// Date returns the YYYY-MM-DD portion of a date or timestamp, or "".
func Date(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) < len(DateLayout) {
		return ""
	}
	d := s[:len(DateLayout)]
	if _, err := time.Parse(DateLayout, d); err != nil {
		return ""
	}
	if len(s) > len(DateLayout) && s[len(DateLayout)] != 'T' && s[len(DateLayout)] != ' ' {
		return ""
	}
	return d
}

// Status returns raw as S when it is literally one of allowed, otherwise fallback.
func Status[S ~string](raw string, allowed []S, fallback S) S {
	for _, candidate := range allowed {
		if raw == string(candidate) {
			return candidate
		}
	}
	return fallback
}

// String trims v and falls back when nothing is left.
func String(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}

// DateOr normalizes raw and falls back to the calendar day of now.
func DateOr(raw string, now time.Time) string {
	if d := Date(raw); d != "" {
		return d
	}
	return now.Format(DateLayout)
}

func TimestampOr(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}

// LessonPlan fills every display-bound field of p.
func LessonPlan(p domain.LessonPlan, now time.Time) domain.LessonPlan {
	p.Title = String(p.Title, Untitled)
	p.Subject = String(p.Subject, Unknown)
	p.Class = String(p.Class, Unknown)
	p.Objectives = String(p.Objectives, Unknown)
	p.Activities = String(p.Activities, Unknown)
	p.Resources = String(p.Resources, Unknown)
	p.Date = DateOr(p.Date, now)
	p.StartTime = Time(p.StartTime)
	p.EndTime = Time(p.EndTime)
	p.Status = Status(string(p.Status), domain.LessonPlanStatuses, domain.LessonPlanPending)
	p.CreatedAt = TimestampOr(p.CreatedAt, now)
	return p
}

// Observation resolves an observation and its references for display. A
// dangling lesson plan falls back to UnknownLessonPlan and a missing trainee
// name to the raw trainee id.
func Observation(rec domain.ObservationRecord, now time.Time) domain.ObservationView {
	obs := rec.Observation
	obs.Date = DateOr(obs.Date, now)
	obs.StartTime = Time(obs.StartTime)
	obs.EndTime = Time(obs.EndTime)
	obs.Status = Status(string(obs.Status), domain.ObservationStatuses, domain.ObservationScheduled)
	obs.CreatedAt = TimestampOr(obs.CreatedAt, now)
	obs.UpdatedAt = TimestampOr(obs.UpdatedAt, obs.CreatedAt)
	return domain.ObservationView{
		Observation:     obs,
		LessonPlanTitle: String(rec.LessonPlanTitle, UnknownLessonPlan),
		TraineeName:     String(rec.TraineeName, String(obs.TraineeID, Unknown)),
	}
}

func Feedback(fb domain.Feedback, now time.Time) domain.Feedback {
	fb.Comments = strings.TrimSpace(fb.Comments)
	fb.CreatedAt = TimestampOr(fb.CreatedAt, now)
	return fb
}

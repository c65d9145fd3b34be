// Package validation checks workflow inputs and reports every offending field
// as a domain validation error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/normalize"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "hhmm", isClockTime)
	mustRegister(v, "ymd", isCalendarDate)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

func isClockTime(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len(normalize.TimeLayout) {
		return false
	}
	_, err := time.Parse(normalize.TimeLayout, s)
	return err == nil
}

func isCalendarDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len(normalize.DateLayout) {
		return false
	}
	_, err := time.Parse(normalize.DateLayout, s)
	return err == nil
}

// Struct validates s against its validate tags.
func Struct(s any) error {
	return toDomain(validate.Struct(s), nil)
}

// LessonPlanDraft canonicalizes a draft and validates it.
func LessonPlanDraft(d domain.LessonPlanDraft) (domain.LessonPlanDraft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Subject = strings.TrimSpace(d.Subject)
	d.Class = strings.TrimSpace(d.Class)
	d.Date = canonicalDate(d.Date)
	d.StartTime = canonicalTime(d.StartTime)
	d.EndTime = canonicalTime(d.EndTime)
	d.DocumentRef = strings.TrimSpace(d.DocumentRef)

	fields := map[string]string{}
	timeRange(fields, d.StartTime, d.EndTime)
	return d, toDomain(validate.Struct(d), fields)
}

func ReviewDecision(d domain.ReviewDecision) (domain.ReviewDecision, error) {
	d.Comments = strings.TrimSpace(d.Comments)
	return d, toDomain(validate.Struct(d), nil)
}

func ScheduleRequest(r domain.ScheduleRequest) (domain.ScheduleRequest, error) {
	r.LessonPlanID = strings.TrimSpace(r.LessonPlanID)
	r.TraineeID = strings.TrimSpace(r.TraineeID)
	r.Date = canonicalDate(r.Date)
	r.StartTime = canonicalTime(r.StartTime)
	r.EndTime = canonicalTime(r.EndTime)

	fields := map[string]string{}
	timeRange(fields, r.StartTime, r.EndTime)
	return r, toDomain(validate.Struct(r), fields)
}

func ObservationFeedback(in domain.ObservationFeedbackInput) (domain.ObservationFeedbackInput, error) {
	in.Comments = strings.TrimSpace(in.Comments)
	return in, toDomain(validate.Struct(in), nil)
}

func Evaluation(in domain.EvaluationInput) (domain.EvaluationInput, error) {
	in.TPAssignmentID = strings.TrimSpace(in.TPAssignmentID)
	in.TraineeID = strings.TrimSpace(in.TraineeID)
	in.SupervisorID = strings.TrimSpace(in.SupervisorID)
	in.Comments = strings.TrimSpace(in.Comments)
	return in, toDomain(validate.Struct(in), nil)
}

// Required reports blank identifiers under their JSON names.
func Required(values map[string]string) error {
	fields := map[string]string{}
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			fields[name] = "is required"
		}
	}
	return domain.NewValidationError(fields)
}

// canonicalTime keeps unparsable input verbatim so the hhmm rule rejects it
// instead of it silently turning into "no time given".
func canonicalTime(raw string) string {
	if t := normalize.Time(raw); t != "" {
		return t
	}
	return strings.TrimSpace(raw)
}

func canonicalDate(raw string) string {
	if d := normalize.Date(raw); d != "" {
		return d
	}
	return strings.TrimSpace(raw)
}

// timeRange requires end strictly after start when both are well formed.
// HH:MM strings order lexically.
func timeRange(fields map[string]string, start, end string) {
	if normalize.Time(start) != start || normalize.Time(end) != end || start == "" || end == "" {
		return
	}
	if end <= start {
		fields["endTime"] = "must be after startTime"
	}
}

func toDomain(err error, fields map[string]string) error {
	if fields == nil {
		fields = map[string]string{}
	}
	if err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return fmt.Errorf("validate input: %w", err)
		}
		for _, fe := range ve {
			fields[fe.Field()] = describe(fe)
		}
	}
	return domain.NewValidationError(fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "hhmm":
		return "must be a time in HH:MM format"
	case "ymd":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

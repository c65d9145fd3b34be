package handler

import (
	"net/http"
	"time"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/metrics"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/middleware"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

type RouterConfig struct {
	LessonPlans    ports.LessonPlanService
	Observations   ports.ObservationService
	Feedback       ports.FeedbackService
	Auth           *middleware.AuthMiddleware
	Health         *HealthHandler
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	RequestTimeout time.Duration
}

var (
	trainees    = []domain.Role{domain.RoleTrainee}
	supervisors = []domain.Role{domain.RoleSupervisor}
	everyone    = []domain.Role{domain.RoleTrainee, domain.RoleSupervisor, domain.RoleAdmin}
)

// NewRouter wires every API route behind authentication, CORS, request
// logging and the request timeout.
func NewRouter(cfg RouterConfig) http.Handler {
	lessonPlans := NewLessonPlanHandler(cfg.LessonPlans, cfg.Metrics)
	observations := NewObservationHandler(cfg.Observations, cfg.Feedback, cfg.Metrics)
	feedback := NewFeedbackHandler(cfg.Feedback, cfg.Metrics)

	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible)
	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /health/ready", cfg.Health.Ready)
	mux.HandleFunc("GET /health/live", cfg.Health.Live)
	mux.Handle("GET /metrics", cfg.Metrics.Handler())

	route := func(pattern string, roles []domain.Role, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Instrument(cfg.Metrics, pattern, cfg.Auth.RequireRole(roles, h)))
	}

	route("POST /lesson-plans", trainees, lessonPlans.Submit)
	route("GET /lesson-plans", everyone, lessonPlans.List)
	route("POST /lesson-plans/{id}/review", supervisors, lessonPlans.Review)
	route("DELETE /lesson-plans/{id}", trainees, lessonPlans.Delete)

	route("POST /observations", supervisors, observations.Schedule)
	route("GET /observations", everyone, observations.List)
	route("PATCH /observations/{id}/status", supervisors, observations.UpdateStatus)
	route("POST /observations/{id}/feedback", supervisors, observations.SubmitFeedback)

	route("GET /feedback", everyone, feedback.List)
	route("POST /evaluations", supervisors, feedback.SubmitEvaluation)

	return middleware.Chain(mux,
		middleware.RequestLogger,
		middleware.CORSMiddleware(cfg.AllowedOrigins),
		middleware.Timeout(cfg.RequestTimeout),
	)
}

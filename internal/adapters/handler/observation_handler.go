package handler

import (
	"net/http"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/metrics"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

type ObservationHandler struct {
	observations ports.ObservationService
	feedback     ports.FeedbackService
	metrics      *metrics.Metrics
}

func NewObservationHandler(observations ports.ObservationService, feedback ports.FeedbackService, m *metrics.Metrics) *ObservationHandler {
	return &ObservationHandler{observations: observations, feedback: feedback, metrics: m}
}

// Schedule handles POST /observations.
func (h *ObservationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	var req domain.ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	obs, err := h.observations.Schedule(r.Context(), v.ID, req)
	record(h.metrics, "observation_schedule", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, obs)
}

func (h *ObservationHandler) List(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	views, err := h.observations.List(r.Context(), v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// UpdateStatus handles PATCH /observations/{id}/status.
func (h *ObservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	var update domain.StatusUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, r, err)
		return
	}

	obs, err := h.observations.AdvanceStatus(r.Context(), r.PathValue("id"), v.ID, update.Status)
	record(h.metrics, "observation_status", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

// SubmitFeedback handles POST /observations/{id}/feedback.
func (h *ObservationHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	var in domain.ObservationFeedbackInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	fb, err := h.feedback.SubmitObservationFeedback(r.Context(), r.PathValue("id"), v.ID, in)
	record(h.metrics, "observation_feedback", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

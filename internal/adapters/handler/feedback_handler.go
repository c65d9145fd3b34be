package handler

import (
	"net/http"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/metrics"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

type FeedbackHandler struct {
	service ports.FeedbackService
	metrics *metrics.Metrics
}

func NewFeedbackHandler(service ports.FeedbackService, m *metrics.Metrics) *FeedbackHandler {
	return &FeedbackHandler{service: service, metrics: m}
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	entries, err := h.service.List(r.Context(), v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// SubmitEvaluation handles POST /evaluations. The grading supervisor is
// always the caller, whatever the body says.
func (h *FeedbackHandler) SubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	var in domain.EvaluationInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.SupervisorID = v.ID

	ev, err := h.service.SubmitStudentEvaluation(r.Context(), in)
	record(h.metrics, "student_evaluation", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

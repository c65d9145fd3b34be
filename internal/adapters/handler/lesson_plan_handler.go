package handler

import (
	"net/http"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/metrics"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

type LessonPlanHandler struct {
	service ports.LessonPlanService
	metrics *metrics.Metrics
}

func NewLessonPlanHandler(service ports.LessonPlanService, m *metrics.Metrics) *LessonPlanHandler {
	return &LessonPlanHandler{service: service, metrics: m}
}

type ReviewResponse struct {
	LessonPlan *domain.LessonPlan `json:"lessonPlan"`
	Feedback   *domain.Feedback   `json:"feedback"`
}

// Submit handles POST /lesson-plans for the calling trainee.
func (h *LessonPlanHandler) Submit(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	var draft domain.LessonPlanDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}

	plan, err := h.service.Submit(r.Context(), v.ID, draft)
	record(h.metrics, "lesson_plan_submit", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// List handles GET /lesson-plans?status=.
func (h *LessonPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	plans, err := h.service.List(r.Context(), v, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// Review handles POST /lesson-plans/{id}/review.
func (h *LessonPlanHandler) Review(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	var decision domain.ReviewDecision
	if err := decodeJSON(w, r, &decision); err != nil {
		writeError(w, r, err)
		return
	}

	plan, fb, err := h.service.Review(r.Context(), r.PathValue("id"), v.ID, decision)
	record(h.metrics, "lesson_plan_review", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReviewResponse{LessonPlan: plan, Feedback: fb})
}

// Delete handles DELETE /lesson-plans/{id}.
func (h *LessonPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	msg, err := h.service.Delete(r.Context(), r.PathValue("id"), v.ID)
	record(h.metrics, "lesson_plan_delete", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// Package mocks provides in-memory implementations of the ports for testing.
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/ports"
)

// MemoryStore implements ports.Store in memory. Atomic calls are serialized
// and work on a copy of the state that is only kept when fn succeeds, so a
// failed operation leaves nothing behind.
type MemoryStore struct {
	mu    sync.Mutex
	state memState

	// FailOn injects an error into the Tx method with the given name,
	// e.g. "InsertFeedback" or "EnqueueEvent".
	FailOn map[string]error

	// ListError is returned by every List method when set.
	ListError error

	AtomicCalls int
}

type memState struct {
	lessonPlans  map[string]domain.LessonPlan
	observations map[string]domain.Observation
	feedback     []domain.Feedback
	evaluations  []domain.Evaluation
	assignments  map[string]domain.TPAssignment
	trainees     map[string]domain.Trainee
	events       []ports.TransitionEvent
}

var _ ports.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memState{
			lessonPlans:  make(map[string]domain.LessonPlan),
			observations: make(map[string]domain.Observation),
			assignments:  make(map[string]domain.TPAssignment),
			trainees:     make(map[string]domain.Trainee),
		},
		FailOn: make(map[string]error),
	}
}

func (s memState) clone() memState {
	out := memState{
		lessonPlans:  make(map[string]domain.LessonPlan, len(s.lessonPlans)),
		observations: make(map[string]domain.Observation, len(s.observations)),
		feedback:     append([]domain.Feedback(nil), s.feedback...),
		evaluations:  append([]domain.Evaluation(nil), s.evaluations...),
		assignments:  make(map[string]domain.TPAssignment, len(s.assignments)),
		trainees:     make(map[string]domain.Trainee, len(s.trainees)),
		events:       append([]ports.TransitionEvent(nil), s.events...),
	}
	for k, v := range s.lessonPlans {
		out.lessonPlans[k] = v
	}
	for k, v := range s.observations {
		out.observations[k] = v
	}
	for k, v := range s.assignments {
		out.assignments[k] = v
	}
	for k, v := range s.trainees {
		out.trainees[k] = v
	}
	return out
}

func (m *MemoryStore) Atomic(ctx context.Context, fn func(tx ports.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AtomicCalls++

	if err := ctx.Err(); err != nil {
		return err
	}
	working := m.state.clone()
	if err := fn(&memTx{store: m, st: &working}); err != nil {
		return err
	}
	m.state = working
	return nil
}

// SeedAssignment places a trainee under a supervisor.
func (m *MemoryStore) SeedAssignment(a domain.TPAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.assignments[a.ID] = a
}

func (m *MemoryStore) SeedTrainee(t domain.Trainee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.trainees[t.ID] = t
}

// SeedLessonPlan stores p as is, without any workflow checks.
func (m *MemoryStore) SeedLessonPlan(p domain.LessonPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.lessonPlans[p.ID] = p
}

func (m *MemoryStore) SeedObservation(o domain.Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.observations[o.ID] = o
}

func (m *MemoryStore) SeedFeedback(fb domain.Feedback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.feedback = append(m.state.feedback, fb)
}

func (m *MemoryStore) LessonPlan(id string) (domain.LessonPlan, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.state.lessonPlans[id]
	return p, ok
}

func (m *MemoryStore) LessonPlanCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.lessonPlans)
}

func (m *MemoryStore) Observation(id string) (domain.Observation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.state.observations[id]
	return o, ok
}

func (m *MemoryStore) ObservationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.observations)
}

func (m *MemoryStore) FeedbackEntries() []domain.Feedback {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Feedback(nil), m.state.feedback...)
}

func (m *MemoryStore) Evaluations() []domain.Evaluation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Evaluation(nil), m.state.evaluations...)
}

// Events returns the committed outbox in enqueue order.
func (m *MemoryStore) Events() []ports.TransitionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.TransitionEvent(nil), m.state.events...)
}

func (m *MemoryStore) ListLessonPlans(ctx context.Context, filter ports.LessonPlanFilter) ([]domain.LessonPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	var out []domain.LessonPlan
	for _, p := range m.state.lessonPlans {
		if filter.TraineeID != "" && p.TraineeID != filter.TraineeID {
			continue
		}
		if filter.SupervisorID != "" && !m.state.supervises(filter.SupervisorID, p.TraineeID) {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListObservations(ctx context.Context, filter ports.ObservationFilter) ([]domain.ObservationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	var out []domain.ObservationRecord
	for _, o := range m.state.observations {
		if filter.TraineeID != "" && o.TraineeID != filter.TraineeID {
			continue
		}
		if filter.SupervisorID != "" && o.SupervisorID != filter.SupervisorID {
			continue
		}
		rec := domain.ObservationRecord{Observation: o}
		if p, ok := m.state.lessonPlans[o.LessonPlanID]; ok {
			rec.LessonPlanTitle = p.Title
		}
		if t, ok := m.state.trainees[o.TraineeID]; ok {
			rec.TraineeName = t.DisplayName
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListFeedback(ctx context.Context, filter ports.FeedbackFilter) ([]domain.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	var out []domain.Feedback
	for _, fb := range m.state.feedback {
		if filter.TraineeID != "" && fb.TraineeID != filter.TraineeID {
			continue
		}
		if filter.SupervisorID != "" && fb.SupervisorID != filter.SupervisorID {
			continue
		}
		out = append(out, fb)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memState) supervises(supervisorID, traineeID string) bool {
	for _, a := range s.assignments {
		if a.SupervisorID == supervisorID && a.TraineeID == traineeID {
			return true
		}
	}
	return false
}

type memTx struct {
	store *MemoryStore
	st    *memState
}

func (t *memTx) fail(method string) error {
	return t.store.FailOn[method]
}

func (t *memTx) LessonPlanByID(ctx context.Context, id string) (*domain.LessonPlan, error) {
	if err := t.fail("LessonPlanByID"); err != nil {
		return nil, err
	}
	p, ok := t.st.lessonPlans[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &p, nil
}

func (t *memTx) HasPendingLessonPlan(ctx context.Context, traineeID string) (bool, error) {
	if err := t.fail("HasPendingLessonPlan"); err != nil {
		return false, err
	}
	return t.st.hasPending(traineeID), nil
}

func (s memState) hasPending(traineeID string) bool {
	for _, p := range s.lessonPlans {
		if p.TraineeID == traineeID && p.Status == domain.LessonPlanPending {
			return true
		}
	}
	return false
}

// InsertLessonPlan enforces one PENDING plan per trainee the way the
// partial unique index does.
func (t *memTx) InsertLessonPlan(ctx context.Context, plan domain.LessonPlan) error {
	if err := t.fail("InsertLessonPlan"); err != nil {
		return err
	}
	if _, ok := t.st.lessonPlans[plan.ID]; ok {
		return ports.ErrDuplicate
	}
	if plan.Status == domain.LessonPlanPending && t.st.hasPending(plan.TraineeID) {
		return ports.ErrDuplicate
	}
	t.st.lessonPlans[plan.ID] = plan
	return nil
}

func (t *memTx) UpdateLessonPlanStatus(ctx context.Context, id string, from, to domain.LessonPlanStatus, at time.Time) (bool, error) {
	if err := t.fail("UpdateLessonPlanStatus"); err != nil {
		return false, err
	}
	p, ok := t.st.lessonPlans[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.ReviewedAt = &at
	t.st.lessonPlans[id] = p
	return true, nil
}

func (t *memTx) DeleteLessonPlan(ctx context.Context, id string, expected domain.LessonPlanStatus) (bool, error) {
	if err := t.fail("DeleteLessonPlan"); err != nil {
		return false, err
	}
	p, ok := t.st.lessonPlans[id]
	if !ok || p.Status != expected {
		return false, nil
	}
	delete(t.st.lessonPlans, id)
	return true, nil
}

func (t *memTx) ObservationByID(ctx context.Context, id string) (*domain.Observation, error) {
	if err := t.fail("ObservationByID"); err != nil {
		return nil, err
	}
	o, ok := t.st.observations[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &o, nil
}

func (t *memTx) InsertObservation(ctx context.Context, obs domain.Observation) error {
	if err := t.fail("InsertObservation"); err != nil {
		return err
	}
	if _, ok := t.st.observations[obs.ID]; ok {
		return ports.ErrDuplicate
	}
	t.st.observations[obs.ID] = obs
	return nil
}

func (t *memTx) UpdateObservationStatus(ctx context.Context, id string, from, to domain.ObservationStatus, at time.Time) (bool, error) {
	if err := t.fail("UpdateObservationStatus"); err != nil {
		return false, err
	}
	o, ok := t.st.observations[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = at
	t.st.observations[id] = o
	return true, nil
}

func (t *memTx) InsertFeedback(ctx context.Context, fb domain.Feedback) error {
	if err := t.fail("InsertFeedback"); err != nil {
		return err
	}
	t.st.feedback = append(t.st.feedback, fb)
	return nil
}

func (t *memTx) InsertEvaluation(ctx context.Context, ev domain.Evaluation) error {
	if err := t.fail("InsertEvaluation"); err != nil {
		return err
	}
	t.st.evaluations = append(t.st.evaluations, ev)
	return nil
}

func (t *memTx) AssignmentByID(ctx context.Context, id string) (*domain.TPAssignment, error) {
	if err := t.fail("AssignmentByID"); err != nil {
		return nil, err
	}
	a, ok := t.st.assignments[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &a, nil
}

func (t *memTx) IsSupervisorOf(ctx context.Context, supervisorID, traineeID string) (bool, error) {
	if err := t.fail("IsSupervisorOf"); err != nil {
		return false, err
	}
	return t.st.supervises(supervisorID, traineeID), nil
}

func (t *memTx) SupervisorOf(ctx context.Context, traineeID string) (string, error) {
	if err := t.fail("SupervisorOf"); err != nil {
		return "", err
	}
	var latest domain.TPAssignment
	for _, a := range t.st.assignments {
		if a.TraineeID == traineeID && (latest.ID == "" || a.CreatedAt.After(latest.CreatedAt)) {
			latest = a
		}
	}
	return latest.SupervisorID, nil
}

func (t *memTx) EnqueueEvent(ctx context.Context, evt ports.TransitionEvent) error {
	if err := t.fail("EnqueueEvent"); err != nil {
		return err
	}
	t.st.events = append(t.st.events, evt)
	return nil
}

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/middleware"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/mocks"
)

func TestRequireRole(t *testing.T) {
	privateKey, publicKey := mocks.GenerateTestKeys(t)
	otherKey, _ := mocks.GenerateTestKeys(t)

	valid := mocks.CreateTestToken(privateKey, "supervisor-1", "SUPERVISOR", false)
	revoked := mocks.CreateTestToken(privateKey, "supervisor-2", "SUPERVISOR", false)

	tests := []struct {
		name           string
		header         string
		setupRedis     func(*mocks.MockRedisClient)
		expectedStatus int
	}{
		{name: "no_auth_header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "invalid_header_format", header: "InvalidFormat", expectedStatus: http.StatusUnauthorized},
		{name: "malformed_token", header: "Bearer invalid.token.here", expectedStatus: http.StatusUnauthorized},
		{name: "expired_token", header: "Bearer " + mocks.CreateTestToken(privateKey, "supervisor-1", "SUPERVISOR", true), expectedStatus: http.StatusUnauthorized},
		{name: "signed_by_another_key", header: "Bearer " + mocks.CreateTestToken(otherKey, "supervisor-1", "SUPERVISOR", false), expectedStatus: http.StatusUnauthorized},
		{name: "wrong_role", header: "Bearer " + mocks.CreateTestToken(privateKey, "trainee-1", "TRAINEE", false), expectedStatus: http.StatusForbidden},
		{name: "missing_role", header: "Bearer " + mocks.CreateTestToken(privateKey, "supervisor-1", "", false), expectedStatus: http.StatusUnauthorized},
		{
			name:   "revoked_token",
			header: "Bearer " + revoked,
			setupRedis: func(m *mocks.MockRedisClient) {
				m.SetKey(RevokedTokenKey(revoked), "1", 0)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "revocation_store_down",
			header: "Bearer " + valid,
			setupRedis: func(m *mocks.MockRedisClient) {
				m.ExistsError = errors.New("connection refused")
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{name: "valid_supervisor", header: "Bearer " + valid, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ARRANGE
			redisClient := mocks.NewMockRedisClient()
			if tt.setupRedis != nil {
				tt.setupRedis(redisClient)
			}
			auth := NewAuthMiddleware(publicKey, redisClient)

			var viewer domain.Viewer
			handler := auth.RequireRole([]domain.Role{domain.RoleSupervisor, domain.RoleAdmin}, func(w http.ResponseWriter, r *http.Request) {
				var ok bool
				viewer, ok = ViewerFrom(r.Context())
				if !ok {
					t.Error("viewer not found in context")
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/observations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			// ACT
			handler.ServeHTTP(rec, req)

			// ASSERT
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected %d, got %d (%s)", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedStatus == http.StatusOK && (viewer.ID != "supervisor-1" || viewer.Role != domain.RoleSupervisor) {
				t.Errorf("unexpected viewer %+v", viewer)
			}
		})
	}
}

func TestRequireRole_WithoutRevocationStore(t *testing.T) {
	privateKey, publicKey := mocks.GenerateTestKeys(t)
	auth := NewAuthMiddleware(publicKey, nil)

	called := false
	handler := auth.RequireRole([]domain.Role{domain.RoleTrainee}, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/lesson-plans", nil)
	req.Header.Set("Authorization", "Bearer "+mocks.CreateTestToken(privateKey, "trainee-1", "TRAINEE", false))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusNoContent {
		t.Errorf("expected handler to run, got %d", rec.Code)
	}
}

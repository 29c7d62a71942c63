package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest("GET", "/admin", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, "user-123")
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"seller", http.StatusForbidden},
		{"user", http.StatusForbidden},
		{"", http.StatusForbidden},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithRole(tt.role))
		if w.Code != tt.want {
			t.Errorf("Role %q: expected %d, got %d", tt.role, tt.want, w.Code)
		}
	}
}

func TestRequireRole_MissingContextIsForbidden(t *testing.T) {
	handler := RequireRole([]string{"admin"}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without a role in context, got %d", w.Code)
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	handler := RequireRole([]string{"seller", "admin"}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithRole("seller"))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for an allowed role, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithRole("user"))
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for a disallowed role, got %d", w.Code)
	}
}

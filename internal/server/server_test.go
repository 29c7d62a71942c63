package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"adbazaar/internal/config"

	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Env: "development"},
		Redis:  config.RedisConfig{Host: "127.0.0.1", Port: "1"},
		JWT:    config.JWTConfig{Secret: "test-secret", AccessExpiry: 15, RefreshExpiry: 7},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Payment: config.PaymentConfig{
			BankName:      "Easypaisa",
			AccountNumber: "0300-1234567",
			AccountTitle:  "AdBazaar Ltd",
		},
	}
}

func TestNewServer_ConstructsFullRouter(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), nil)
	if srv == nil || srv.Handler == nil {
		t.Fatal("Expected a server with a router")
	}
	defer srv.Close()

	// The rate limiter points at an unreachable Redis and fails open, so the
	// health endpoint must still answer.
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", rec.Code)
	}

	// A protected route wired by the handlers rejects anonymous requests.
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 from protected route, got %d", rec.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig(burst int) RateLimiterConfig {
	return RateLimiterConfig{
		LoginRate:       rate.Limit(1.0 / 60.0),
		LoginBurst:      burst,
		CleanupInterval: time.Hour,
	}
}

func TestRateLimiter_LoginMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(3))
	defer rl.Stop()
	mw := rl.LoginMiddleware()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth_session/login", nil)
		req.RemoteAddr = "203.0.113.1:12345"
		rec := httptest.NewRecorder()
		mw(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestRateLimiter_LoginMiddleware_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1))
	defer rl.Stop()
	mw := rl.LoginMiddleware()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/auth_session/login", nil)
	first.RemoteAddr = "203.0.113.1:12345"
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", rec.Code, http.StatusOK)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/auth_session/login", nil)
	second.RemoteAddr = "203.0.113.1:54321"
	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, second)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response should include Retry-After header")
	}
}

func TestRateLimiter_LoginMiddleware_IsolatesClients(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1))
	defer rl.Stop()
	mw := rl.LoginMiddleware()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/auth_session/login", nil)
	first.RemoteAddr = "203.0.113.1:12345"
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, first)

	// 別IPは独立したリミッターを持つ
	other := httptest.NewRequest(http.MethodPost, "/api/v1/auth_session/login", nil)
	other.RemoteAddr = "203.0.113.2:12345"
	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, other)

	if rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want %d", rec.Code, http.StatusOK)
	}
	if count := rl.LimiterCount(); count != 2 {
		t.Errorf("LimiterCount = %d, want 2", count)
	}
}

func TestClientIPFromRequest_StripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.1:12345"

	if ip := clientIPFromRequest(req); ip != "203.0.113.1" {
		t.Errorf("clientIP = %q, want %q", ip, "203.0.113.1")
	}
}

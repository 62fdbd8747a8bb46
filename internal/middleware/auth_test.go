package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/session"
)

const testCookieName = "_my_session_id"

// mockStrategy はテスト用の認証ストラテジー。
type mockStrategy struct {
	requiresAuthFn func(path string, excludedPaths []string) bool
	currentUserFn  func(r *http.Request) (*model.User, error)
}

func (m *mockStrategy) RequiresAuth(path string, excludedPaths []string) bool {
	if m.requiresAuthFn != nil {
		return m.requiresAuthFn(path, excludedPaths)
	}
	return true
}

func (m *mockStrategy) CurrentUser(r *http.Request) (*model.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(r)
	}
	return nil, nil
}

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

func TestAuthMiddleware_ExcludedPath_PassesThrough(t *testing.T) {
	strategy := &mockStrategy{
		requiresAuthFn: func(path string, excludedPaths []string) bool { return false },
		currentUserFn: func(r *http.Request) (*model.User, error) {
			t.Fatal("CurrentUser should not be called for an excluded path")
			return nil, nil
		},
	}
	mw := NewAuthMiddleware(strategy, []string{"/api/v1/status/"}, testCookieName)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	mw(okHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_NoCredentials_Returns401(t *testing.T) {
	strategy := &mockStrategy{
		currentUserFn: func(r *http.Request) (*model.User, error) {
			t.Fatal("CurrentUser should not be called without any credential")
			return nil, nil
		},
	}
	mw := NewAuthMiddleware(strategy, []string{"/api/v1/status/"}, testCookieName)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	mw(okHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if body := decodeErrorBody(t, rec); body.Code != "UNAUTHORIZED" {
		t.Errorf("body.Code = %q, want %q", body.Code, "UNAUTHORIZED")
	}
}

func TestAuthMiddleware_UnresolvableCredential_Returns403(t *testing.T) {
	strategy := &mockStrategy{
		currentUserFn: func(r *http.Request) (*model.User, error) { return nil, nil },
	}
	mw := NewAuthMiddleware(strategy, nil, testCookieName)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Basic bm90LXZhbGlk")
	rec := httptest.NewRecorder()
	mw(okHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if body := decodeErrorBody(t, rec); body.Code != "FORBIDDEN" {
		t.Errorf("body.Code = %q, want %q", body.Code, "FORBIDDEN")
	}
}

func TestAuthMiddleware_UnknownSessionCookie_Returns403(t *testing.T) {
	strategy := &mockStrategy{
		currentUserFn: func(r *http.Request) (*model.User, error) { return nil, nil },
	}
	mw := NewAuthMiddleware(strategy, nil, testCookieName)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "never-issued"})
	rec := httptest.NewRecorder()
	mw(okHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestAuthMiddleware_StoreUnavailable_Returns503(t *testing.T) {
	strategy := &mockStrategy{
		currentUserFn: func(r *http.Request) (*model.User, error) {
			return nil, fmt.Errorf("resolve session: %w", session.ErrUnavailable)
		},
	}
	mw := NewAuthMiddleware(strategy, nil, testCookieName)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "some-session"})
	rec := httptest.NewRecorder()
	mw(okHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if body := decodeErrorBody(t, rec); body.Code != "STORE_UNAVAILABLE" {
		t.Errorf("body.Code = %q, want %q", body.Code, "STORE_UNAVAILABLE")
	}
}

func TestAuthMiddleware_OtherError_Returns500(t *testing.T) {
	strategy := &mockStrategy{
		currentUserFn: func(r *http.Request) (*model.User, error) {
			return nil, fmt.Errorf("directory query failed")
		},
	}
	mw := NewAuthMiddleware(strategy, nil, testCookieName)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Basic YTpi")
	rec := httptest.NewRecorder()
	mw(okHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestAuthMiddleware_ResolvedUser_InjectedIntoContext(t *testing.T) {
	want := &model.User{ID: "user-42", Email: "u42@example.com"}
	strategy := &mockStrategy{
		currentUserFn: func(r *http.Request) (*model.User, error) { return want, nil },
	}
	mw := NewAuthMiddleware(strategy, nil, testCookieName)

	var got *model.User
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "valid-session"})
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil || got.ID != "user-42" {
		t.Errorf("context user = %+v, want user-42", got)
	}
}

func TestUserFromContext_Empty_ReturnsNil(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if user := UserFromContext(req.Context()); user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

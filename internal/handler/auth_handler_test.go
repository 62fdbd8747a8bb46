package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hitoshi/authgate/internal/middleware"
	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/session"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn          func(ctx context.Context, email, passwd string) (*model.User, string, error)
	logoutFn         func(ctx context.Context, sessionID string) (bool, error)
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, passwd string) (*model.User, string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, passwd)
	}
	return nil, "", nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) (bool, error) {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return false, nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		SessionCookieName: "_my_session_id",
		CookieSecure:      false,
		SessionMaxAge:     3600,
	}
}

func loginRequest(t *testing.T, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth_session/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

// --- Login ---

func TestAuthHandler_Login_Success_SetsSessionCookie(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, passwd string) (*model.User, string, error) {
			return &model.User{ID: "user-1", Email: email, Name: "Alice"}, "session-abc", nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	form := url.Values{"email": {"alice@example.com"}, "password": {"s3cr3t"}}
	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, form))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	cookies := rec.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == "_my_session_id" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.Value != "session-abc" {
		t.Errorf("cookie value = %q, want %q", sessionCookie.Value, "session-abc")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	var body userResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.ID != "user-1" || body.Email != "alice@example.com" {
		t.Errorf("body = %+v, want user-1/alice@example.com", body)
	}
}

func TestAuthHandler_Login_MissingEmail_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	form := url.Values{"password": {"s3cr3t"}}
	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, form))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if body := decodeAPIError(t, rec); body.Code != "EMAIL_MISSING" {
		t.Errorf("body.Code = %q, want %q", body.Code, "EMAIL_MISSING")
	}
}

func TestAuthHandler_Login_MissingPassword_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	form := url.Values{"email": {"alice@example.com"}}
	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, form))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if body := decodeAPIError(t, rec); body.Code != "PASSWORD_MISSING" {
		t.Errorf("body.Code = %q, want %q", body.Code, "PASSWORD_MISSING")
	}
}

func TestAuthHandler_Login_UnknownEmail_Returns404(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, passwd string) (*model.User, string, error) {
			return nil, "", model.NewNoUserForEmailError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	form := url.Values{"email": {"nobody@example.com"}, "password": {"s3cr3t"}}
	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, form))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if body := decodeAPIError(t, rec); body.Code != "NO_USER_FOR_EMAIL" {
		t.Errorf("body.Code = %q, want %q", body.Code, "NO_USER_FOR_EMAIL")
	}
}

func TestAuthHandler_Login_WrongPassword_Returns401(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, passwd string) (*model.User, string, error) {
			return nil, "", model.NewWrongPasswordError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	form := url.Values{"email": {"alice@example.com"}, "password": {"wrong"}}
	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, form))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Login_StoreUnavailable_Returns503(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, passwd string) (*model.User, string, error) {
			return nil, "", fmt.Errorf("create session: %w", session.ErrUnavailable)
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	form := url.Values{"email": {"alice@example.com"}, "password": {"s3cr3t"}}
	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(t, form))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

// --- Logout ---

func TestAuthHandler_Logout_Success_ClearsCookie(t *testing.T) {
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) (bool, error) {
			return sessionID == "session-abc", nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth_session/logout", nil)
	req.AddCookie(&http.Cookie{Name: "_my_session_id", Value: "session-abc"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_my_session_id" {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("expected session cookie to be cleared")
	}
	if cleared.MaxAge >= 0 {
		t.Errorf("cookie MaxAge = %d, want negative to expire", cleared.MaxAge)
	}
}

func TestAuthHandler_Logout_NoCookie_Returns404(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth_session/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if body := decodeAPIError(t, rec); body.Code != "SESSION_NOT_FOUND" {
		t.Errorf("body.Code = %q, want %q", body.Code, "SESSION_NOT_FOUND")
	}
}

func TestAuthHandler_Logout_UnknownSession_Returns404(t *testing.T) {
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) (bool, error) {
			return false, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth_session/logout", nil)
	req.AddCookie(&http.Cookie{Name: "_my_session_id", Value: "never-issued"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// --- Me ---

func TestAuthHandler_Me_AuthenticatedUser_ReturnsProfile(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), &model.User{
		ID:    "user-1",
		Email: "alice@example.com",
		Name:  "Alice",
	}))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body userResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.ID != "user-1" || body.Name != "Alice" {
		t.Errorf("body = %+v, want user-1/Alice", body)
	}
}

func TestAuthHandler_Me_NoContextUser_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

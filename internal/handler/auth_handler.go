// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/authgate/internal/middleware"
	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/session"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, email, passwd string) (*model.User, string, error)
	Logout(ctx context.Context, sessionID string) (bool, error)
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	SessionCookieName string
	CookieDomain      string
	CookieSecure      bool
	SessionMaxAge     int // セッションCookieの有効期間（秒）。0の場合はブラウザセッション限り
}

// AuthHandler はセッション認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// userResponse はユーザー情報のレスポンス表現。パスワードダイジェストは含めない。
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

// Login は(email, password)を検証してセッションCookieを発行する。
// POST /api/v1/auth_session/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	if email == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewEmailMissingError())
		return
	}
	passwd := r.FormValue("password")
	if passwd == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewPasswordMissingError())
		return
	}

	user, sessionID, err := h.service.Login(r.Context(), email, passwd)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	// セッションCookieを設定（HTTP Only）
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newUserResponse(user))
}

// writeLoginError はLoginのエラーをHTTPステータスにマッピングして書き込む。
func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeNoUserForEmail:
			middleware.WriteErrorResponse(w, http.StatusNotFound, apiErr)
		case model.ErrCodeWrongPassword:
			middleware.WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
		default:
			middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		}
		return
	}
	if errors.Is(err, session.ErrUnavailable) {
		slog.Error("session store unavailable on login", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewStoreUnavailableError())
		return
	}
	slog.Error("login failed", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// Logout はセッションを破棄し、セッションCookieをクリアする。
// 有効なセッションCookieが無い場合は404を返す。
// DELETE /api/v1/auth_session/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.config.SessionCookieName)
	if err != nil || cookie.Value == "" {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewSessionNotFoundError())
		return
	}

	destroyed, err := h.service.Logout(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, session.ErrUnavailable) {
			middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewStoreUnavailableError())
			return
		}
		slog.Error("failed to logout", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if !destroyed {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewSessionNotFoundError())
		return
	}

	// セッションCookieをクリア
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{})
}

// Me は現在のログインユーザー情報を返す。
// 認証ミドルウェアが解決したコンテキスト上のユーザーを参照する。
// GET /api/v1/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newUserResponse(user))
}

package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/authgate/internal/auth"
	"github.com/hitoshi/authgate/internal/credentials"
	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/session"
)

// NewAuthMiddleware はリクエストパイプラインの認証ゲートを返す。
// 除外パスはそのまま通し、保護対象パスでは次の順で判定する:
//  1. AuthorizationヘッダーもセッションCookieも無い → 401
//  2. 認証情報はあるがプリンシパルを解決できない → 403
//  3. セッションストア障害 → 503
//
// 解決したユーザーはリクエストコンテキストに注入する。
func NewAuthMiddleware(strategy auth.Strategy, excludedPaths []string, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strategy.RequiresAuth(r.URL.Path, excludedPaths) {
				next.ServeHTTP(w, r)
				return
			}

			// 認証情報が一切無い場合は401。ヘッダーとCookieの両方を確認する。
			authHeader := r.Header.Get("Authorization")
			sessionID := credentials.SessionID(r, cookieName)
			if authHeader == "" && sessionID == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			user, err := strategy.CurrentUser(r)
			if err != nil {
				if errors.Is(err, session.ErrUnavailable) {
					slog.Error("session store unavailable",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
					WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewStoreUnavailableError())
					return
				}
				slog.Error("failed to resolve current user",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}

			// 認証情報はあるが解決できない（不正なヘッダー・未知のセッション・
			// 期限切れなど）場合は403
			if user == nil {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/authgate/internal/auth"
	"github.com/hitoshi/authgate/internal/metrics"
	"github.com/hitoshi/authgate/internal/middleware"
)

// DefaultExcludedPaths は認証ゲートの対象外とするパスの一覧。
// 完全一致エントリは配下のパスを除外しない（/api/v1/users/ を除外しても
// /api/v1/users/me/ は保護される）。
var DefaultExcludedPaths = []string{
	"/api/v1/status/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
	"/api/v1/auth_session/login/",
	"/api/v1/users/",
	"/health/",
	"/metrics/",
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// 認証ゲート
	Strategy          auth.Strategy
	ExcludedPaths     []string
	SessionCookieName string

	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	HTTPMetrics       middleware.HTTPMetricsRecorder

	// サービス
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig
	UserService UserServiceInterface

	// 運用エンドポイント
	HealthDB Pinger
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics → AuthGate
//
// AuthGateはExcludedPathsに含まれないすべてのパスを保護する。
// ログインエンドポイントにはIP単位のレート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewAuthMiddleware(deps.Strategy, deps.ExcludedPaths, deps.SessionCookieName))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)

	r.Route("/api/v1", func(r chi.Router) {
		// 稼働確認と検証用エンドポイント（認証ゲートの除外対象）
		r.Get("/status", Status)
		r.Get("/unauthorized", Unauthorized)
		r.Get("/forbidden", Forbidden)

		// セッション管理
		r.Route("/auth_session", func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
			} else {
				r.Post("/login", authHandler.Login)
			}
			r.Delete("/logout", authHandler.Logout)
		})

		// ユーザー管理
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Get("/me", authHandler.Me)
		})
	})

	// 運用エンドポイント
	r.Get("/health", NewHealthHandler(deps.HealthDB))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/authgate/internal/middleware"
	"github.com/hitoshi/authgate/internal/model"
)

// Status はAPIの稼働状態を返す。認証ゲートの除外対象。
// GET /api/v1/status
func Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// Unauthorized は常に401を返す検証用エンドポイント。
// 401レスポンスの統一フォーマットをクライアント側で確認するために使う。
// GET /api/v1/unauthorized
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// Forbidden は常に403を返す検証用エンドポイント。
// GET /api/v1/forbidden
func Forbidden(w http.ResponseWriter, r *http.Request) {
	middleware.WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
}

// Pinger はヘルスチェックに必要なデータベース接続のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewHealthHandler はデータベース接続を確認するヘルスチェックハンドラーを返す。
// dbがnilの場合（インメモリ構成）はプロセス稼働のみを確認する。
// GET /health
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}
}

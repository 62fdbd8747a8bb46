package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/authgate/internal/middleware"
	"github.com/hitoshi/authgate/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Register(ctx context.Context, email, passwd, name string) (*model.User, error)
}

// UserHandler はユーザー登録関連のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// Register は新規ユーザーを登録する。
// POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
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
	name := r.FormValue("name")

	user, err := h.service.Register(r.Context(), email, passwd, name)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
		slog.Error("failed to register user", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newUserResponse(user))
}

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/password"
	"github.com/hitoshi/authgate/internal/repository"
	"github.com/hitoshi/authgate/internal/session"
)

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
	RecordSessionCreated()
	RecordSessionDestroyed()
}

// nopMetrics はメトリクス未設定時のための何もしない実装。
type nopMetrics struct{}

func (nopMetrics) RecordLoginSuccess()              {}
func (nopMetrics) RecordLoginFailure(reason string) {}
func (nopMetrics) RecordSessionCreated()            {}
func (nopMetrics) RecordSessionDestroyed()          {}

// Service は認証に関するビジネスロジックを提供する。
// ログイン・ログアウト・ユーザー登録・現在ユーザーの取得を担う。
type Service struct {
	users   repository.UserRepository
	store   *session.Store
	metrics MetricsRecorder
}

// NewService はServiceを生成する。metricsがnilの場合は記録を行わない。
func NewService(users repository.UserRepository, store *session.Store, metrics MetricsRecorder) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		users:   users,
		store:   store,
		metrics: metrics,
	}
}

// Login は(email, password)を検証し、セッションを発行する。
// メールアドレスに一致する候補を登録順に走査し、パスワードが一致した
// 最初のユーザーでログインする。
// 該当ユーザーなしはNO_USER_FOR_EMAIL、パスワード不一致はWRONG_PASSWORDの
// APIErrorを返し、ハンドラー側でそれぞれ404/401にマッピングされる。
func (s *Service) Login(ctx context.Context, email, passwd string) (*model.User, string, error) {
	users, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find users by email: %w", err)
	}
	if len(users) == 0 {
		s.metrics.RecordLoginFailure("no_user")
		return nil, "", model.NewNoUserForEmailError()
	}

	var user *model.User
	for _, candidate := range users {
		if password.Verify(passwd, candidate.PasswordHash) {
			user = candidate
			break
		}
	}
	if user == nil {
		s.metrics.RecordLoginFailure("wrong_password")
		return nil, "", model.NewWrongPasswordError()
	}

	sessionID, err := s.store.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}
	s.metrics.RecordLoginSuccess()
	s.metrics.RecordSessionCreated()

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, sessionID, nil
}

// Logout はセッションを破棄する。破棄した場合はtrueを返す。
// 未知のセッションIDに対してはfalseを返す（エラーにはしない）。
func (s *Service) Logout(ctx context.Context, sessionID string) (bool, error) {
	destroyed, err := s.store.Destroy(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to destroy session: %w", err)
	}
	if destroyed {
		s.metrics.RecordSessionDestroyed()
		slog.Info("user logged out", slog.String("session_id", sessionID))
	}
	return destroyed, nil
}

// Register は新規ユーザーを登録する。
// メールアドレスが既に登録済みの場合はDUPLICATE_EMAILのAPIErrorを返す。
// パスワードはbcryptダイジェストとして保存し、平文は保持しない。
func (s *Service) Register(ctx context.Context, email, passwd, name string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if len(existing) > 0 {
		return nil, model.NewDuplicateEmailError(email)
	}

	digest, err := password.Hash(passwd)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// GetCurrentUser はセッションIDから現在のユーザーを取得する。
// セッションが存在しない・期限切れ・ユーザー不在の場合はnilを返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	userID, err := s.store.Resolve(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if userID == "" {
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Package session はセッションの発行・解決・破棄の状態機械を提供する。
//
// プレーン・TTL付き・永続化の3バリアントは独立の実装ではなく、
// 1つのStoreをリポジトリとTTLの組み合わせで構成して実現する:
//
//	プレーン:  NewStore(メモリリポジトリ, 0)
//	TTL付き:  NewStore(メモリリポジトリ, ttl)
//	永続化:   NewStore(PostgreSQLリポジトリ, ttl)
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/repository"
)

// ErrUnavailable はセッションストアのバックエンドに到達できないことを表す。
// 「セッションが存在しない」とは区別され、呼び出し側は503相当として扱う。
var ErrUnavailable = errors.New("session store unavailable")

// Store はセッションIDの発行・解決・破棄を行う状態機械。
// レコードの保管はSessionRepositoryに委譲し、TTL判定のみを担う。
// 全リクエストハンドラーで1つのStoreを共有する。
type Store struct {
	records repository.SessionRepository
	ttl     time.Duration
	now     func() time.Time
}

// NewStore はStoreを生成する。
// ttlが0以下の場合、セッションは無期限に有効となる。
func NewStore(records repository.SessionRepository, ttl time.Duration) *Store {
	return &Store{
		records: records,
		ttl:     ttl,
		now:     time.Now,
	}
}

// TTL は設定されたセッション有効期間を返す。0以下は無期限を意味する。
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create はuserIDに紐づく新しいセッションを発行し、セッションIDを返す。
// userIDが空の場合はセッションを発行せず空文字列を返す。
// セッションIDにはランダムUUID（122ビットエントロピー）を使用するため、
// 衝突確率は暗号学的に無視できる。
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}

	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.now(),
	}

	if err := s.records.Create(ctx, session); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return session.ID, nil
}

// Resolve はセッションIDからユーザーIDを解決する。
// 未知のIDは空文字列を返す。TTLが設定されていて期限切れの場合も空文字列を返すが、
// レコードの削除は行わない（遅延期限切れ）。掃除はSweeperが担う。
// バックエンド障害時はErrUnavailableをラップしたエラーを返す。
func (s *Store) Resolve(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}

	session, err := s.records.FindByID(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if session == nil {
		return "", nil
	}

	if s.ttl > 0 && s.now().After(session.CreatedAt.Add(s.ttl)) {
		// 期限切れ。レコードは残したまま無効として扱う
		return "", nil
	}

	return session.UserID, nil
}

// Destroy はセッションを破棄する。破棄した場合はtrueを返す。
// 未知のIDに対してはfalseを返し、同一IDへの2回目の呼び出しもfalseになる（冪等）。
func (s *Store) Destroy(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	deleted, err := s.records.DeleteByID(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return deleted, nil
}

// Package auth は認証ストラテジーとセッション管理のビジネスロジックを提供する。
package auth

import (
	"net/http"
	"strings"

	"github.com/hitoshi/authgate/internal/credentials"
	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/password"
	"github.com/hitoshi/authgate/internal/repository"
	"github.com/hitoshi/authgate/internal/session"
)

// Strategy はリクエストごとの認証ポリシーを表すインターフェース。
// 起動時にAUTH_TYPEから1つの実装を選択し、リクエストパイプラインに注入する。
type Strategy interface {
	// RequiresAuth はpathが認証を必要とするかを返す。
	// 判定規則はpathExcludedを参照。
	RequiresAuth(path string, excludedPaths []string) bool

	// CurrentUser はリクエストから現在のプリンシパルを解決する。
	// 認証情報が欠落・不正・未解決の場合は(nil, nil)を返す。
	// エラーはセッションストア障害などのシステム異常のみ。
	CurrentUser(r *http.Request) (*model.User, error)
}

// policy は全ストラテジー共通のパス判定を提供する。各実装に埋め込んで使う。
type policy struct{}

// RequiresAuth はpathが認証を必要とするかを返す。
// pathが空、または除外リストが空の場合は判定そのものをスキップし、
// 認証不要として扱う（明示的な早期リターン）。
// それ以外は末尾スラッシュを補った上で、除外エントリとの完全一致、
// またはワイルドカード（*）付きエントリの前方一致で除外を判定する。
func (policy) RequiresAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return false
	}

	normalized := path
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	for _, excluded := range excludedPaths {
		if idx := strings.Index(excluded, "*"); idx >= 0 {
			if strings.HasPrefix(normalized, excluded[:idx]) {
				return false
			}
		}
		if normalized == excluded {
			return false
		}
	}
	return true
}

// NoAuth は認証を行わないストラテジー。プリンシパルは常に解決されない。
type NoAuth struct {
	policy
}

// NewNoAuth はNoAuthを生成する。
func NewNoAuth() *NoAuth {
	return &NoAuth{}
}

// CurrentUser は常に(nil, nil)を返す。
func (a *NoAuth) CurrentUser(r *http.Request) (*model.User, error) {
	return nil, nil
}

// Basic はHTTP Basic認証ストラテジー。
// Authorizationヘッダーの(email, password)をユーザーディレクトリと照合する。
type Basic struct {
	policy
	users repository.UserRepository
}

// NewBasic はBasicを生成する。
func NewBasic(users repository.UserRepository) *Basic {
	return &Basic{users: users}
}

// CurrentUser はBasic認証ヘッダーからプリンシパルを解決する。
// メールアドレスに一致する候補をディレクトリの自然順で走査し、
// 保存ダイジェストがパスワードと一致した最初のユーザーを返す。
func (a *Basic) CurrentUser(r *http.Request) (*model.User, error) {
	if r == nil {
		return nil, nil
	}

	email, passwd, ok := credentials.ExtractBasic(r.Header.Get("Authorization"))
	if !ok {
		return nil, nil
	}

	users, err := a.users.FindByEmail(r.Context(), email)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if password.Verify(passwd, user.PasswordHash) {
			return user, nil
		}
	}
	return nil, nil
}

// Session はCookieセッション認証ストラテジー。
// プレーン・TTL付き・永続化の3バリアントは、注入するStoreの構成
// （リポジトリ×TTL）の違いであり、このストラテジー自体は共通。
type Session struct {
	policy
	store      *session.Store
	users      repository.UserRepository
	cookieName string
}

// NewSession はSessionを生成する。
func NewSession(store *session.Store, users repository.UserRepository, cookieName string) *Session {
	return &Session{
		store:      store,
		users:      users,
		cookieName: cookieName,
	}
}

// CurrentUser はセッションCookieからプリンシパルを解決する。
// Cookie欠落・未知のセッション・期限切れはいずれも(nil, nil)になる。
// ストア障害はsession.ErrUnavailableをラップしたエラーとして伝播する。
func (a *Session) CurrentUser(r *http.Request) (*model.User, error) {
	if r == nil {
		return nil, nil
	}

	sessionID := credentials.SessionID(r, a.cookieName)
	if sessionID == "" {
		return nil, nil
	}

	userID, err := a.store.Resolve(r.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, nil
	}

	return a.users.FindByID(r.Context(), userID)
}

// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/authgate/internal/model"
)

// UserRepository はユーザーディレクトリの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスに一致するユーザー候補を
	// ディレクトリの自然順（登録順）で返す。該当なしの場合は空スライスを返す。
	FindByEmail(ctx context.Context, email string) ([]*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションレコードの保管インターフェース。
// インメモリ実装とPostgreSQL実装があり、TTL判定は行わない。
// 期限切れ判定は設定値を知るsession.Storeが担う。
type SessionRepository interface {
	// Create はセッションレコードを保存する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。
	// 削除した場合はtrue、レコードが存在しなかった場合はfalseを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)

	// DeleteCreatedBefore はcutoffより前に作成されたセッションを削除し、件数を返す。
	// 期限切れレコードの定期掃除に使用する。
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザー（プリンシパル）を表す。
// PasswordHashにはbcryptダイジェストのみを保持し、平文パスワードは保持しない。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// 有効期限は保持せず、CreatedAtと起動時設定のTTLから遅延評価で判定する。
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// Package password はパスワードのハッシュ化と検証を提供する。
// ダイジェストにはbcrypt（ソルト付き）を使用し、平文パスワードは一切保存しない。
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash は平文パスワードからソルト付きbcryptダイジェストを生成する。
func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードがダイジェストと一致するかを検証する。
// ダイジェストが不正な形式の場合も単にfalseを返す。
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

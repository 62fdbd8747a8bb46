// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmailMissing     = "EMAIL_MISSING"
	ErrCodePasswordMissing  = "PASSWORD_MISSING"
	ErrCodeNoUserForEmail   = "NO_USER_FOR_EMAIL"
	ErrCodeWrongPassword    = "WRONG_PASSWORD"
	ErrCodeSessionNotFound  = "SESSION_NOT_FOUND"
	ErrCodeDuplicateEmail   = "DUPLICATE_EMAIL"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
)

// NewEmailMissingError はメールアドレス未指定エラーを生成する。
func NewEmailMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailMissing,
		Message:  "メールアドレスが指定されていません。",
		Category: "validation",
		Action:   "emailフィールドを指定してください。",
	}
}

// NewPasswordMissingError はパスワード未指定エラーを生成する。
func NewPasswordMissingError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMissing,
		Message:  "パスワードが指定されていません。",
		Category: "validation",
		Action:   "passwordフィールドを指定してください。",
	}
}

// NewNoUserForEmailError は該当ユーザー未検出エラーを生成する。
func NewNoUserForEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeNoUserForEmail,
		Message:  "このメールアドレスに対応するユーザーが見つかりません。",
		Category: "auth",
		Action:   "メールアドレスを確認するか、ユーザー登録を行ってください。",
	}
}

// NewWrongPasswordError はパスワード不一致エラーを生成する。
func NewWrongPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWrongPassword,
		Message:  "パスワードが一致しません。",
		Category: "auth",
		Action:   "パスワードを確認して再度お試しください。",
	}
}

// NewSessionNotFoundError はセッション未検出エラーを生成する。
func NewSessionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  "有効なセッションが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("メールアドレス %s は既に登録されています。", email),
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
// 認証情報（AuthorizationヘッダーまたはセッションCookie）が一切提示されていない場合に使用する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証情報が提示されていません。",
		Category: "auth",
		Action:   "ログインするか、Authorizationヘッダーを付与してください。",
	}
}

// NewForbiddenError は認可失敗エラーを生成する。
// 認証情報は提示されたが、有効なプリンシパルに解決できなかった場合に使用する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "認証情報が無効です。",
		Category: "auth",
		Action:   "認証情報を確認して再度ログインしてください。",
	}
}

// NewStoreUnavailableError はセッションストア利用不可エラーを生成する。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "セッションストアに接続できません。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

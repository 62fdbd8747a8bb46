// Package credentials はリクエストから生の認証情報を取り出す純粋関数を提供する。
// Basic認証ヘッダーのデコードと、名前付きCookieからのセッションID読み取りの2種類。
// 不正な形式は「認証情報なし」として扱い、エラーとしては伝播させない。
package credentials

import (
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"
)

// basicScheme はAuthorizationヘッダーのスキームトークン。大文字小文字を区別する。
const basicScheme = "Basic"

// ExtractBasic はAuthorizationヘッダー値から(email, password)を取り出す。
// ヘッダーは "Basic" トークン、空白、base64ペイロードの順でなければならない。
// base64は厳格モードでデコードし、不正なパディングや文字は不正として扱う。
// デコード結果は最初の ":" でのみ分割するため、パスワードに ":" を含められる。
// 形式が不正な場合はokがfalseになる。
func ExtractBasic(header string) (email, passwd string, ok bool) {
	if header == "" {
		return "", "", false
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != basicScheme {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.Strict().DecodeString(parts[1])
	if err != nil {
		return "", "", false
	}
	if !utf8.Valid(decoded) {
		return "", "", false
	}

	payload := string(decoded)
	idx := strings.Index(payload, ":")
	if idx < 0 {
		// 区切り文字がない
		return "", "", false
	}

	return payload[:idx], payload[idx+1:], true
}

// SessionID はリクエストのCookieからセッションIDを読み取る。
// Cookieが存在しない場合は空文字列を返す。エラーにはしない。
func SessionID(r *http.Request, cookieName string) string {
	if r == nil {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

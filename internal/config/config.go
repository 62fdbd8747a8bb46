package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AuthType は起動時に選択する認証ストラテジーを表す型付き列挙。
// 環境変数AUTH_TYPEの文字列から起動時に1回だけ解決する。
type AuthType string

const (
	// AuthTypeNone は認証を行わないことを示す。
	AuthTypeNone AuthType = "none"
	// AuthTypeBasic はHTTP Basic認証を示す。
	AuthTypeBasic AuthType = "basic"
	// AuthTypeSession はインメモリの無期限セッション認証を示す。
	AuthTypeSession AuthType = "session"
	// AuthTypeExpiringSession はTTL付きインメモリセッション認証を示す。
	AuthTypeExpiringSession AuthType = "expiring-session"
	// AuthTypePersistedSession はDB永続化されたTTL付きセッション認証を示す。
	AuthTypePersistedSession AuthType = "persisted-session"
)

// ParseAuthType はAUTH_TYPEの文字列値をAuthTypeに解決する。
// 空文字列はAuthTypeNoneとして扱い、未知の値はエラーを返す。
func ParseAuthType(s string) (AuthType, error) {
	switch s {
	case "", string(AuthTypeNone):
		return AuthTypeNone, nil
	case string(AuthTypeBasic):
		return AuthTypeBasic, nil
	case string(AuthTypeSession):
		return AuthTypeSession, nil
	case string(AuthTypeExpiringSession):
		return AuthTypeExpiringSession, nil
	case string(AuthTypePersistedSession):
		return AuthTypePersistedSession, nil
	default:
		return "", fmt.Errorf("unknown AUTH_TYPE: %q", s)
	}
}

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	AuthType AuthType

	// Session
	SessionCookieName string
	SessionDuration   int // セッションTTL（秒）。0以下は無期限。

	// Rate Limit
	RateLimitLogin int // ログイン試行のレート（req/min/IP）

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合、またはAUTH_TYPEが未知の値の場合はエラーを返す。
// SESSION_DURATIONが整数として解釈できない場合は0（無期限）として扱う。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	authType, err := ParseAuthType(os.Getenv("AUTH_TYPE"))
	if err != nil {
		return nil, err
	}
	cfg.AuthType = authType

	// Optional fields with defaults
	cfg.SessionCookieName = getEnvString("SESSION_NAME", "_my_session_id")
	cfg.SessionDuration = getEnvInt("SESSION_DURATION", 0)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

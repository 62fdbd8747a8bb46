// Package logger はPII秘匿機能付きのJSON構造化ログを提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Redaction は秘匿対象フィールドの値を置き換える文字列。
const Redaction = "***"

// PIIFields はログ出力時に値を秘匿する属性キーの一覧。
// ログに個人情報が平文で残らないよう、キー名が一致した属性の値をRedactionに置き換える。
var PIIFields = []string{"name", "email", "phone", "ssn", "password"}

// redactAttr は属性キーがPIIFieldsに含まれる場合に値を秘匿する。
// グループ内の属性も対象とする。
func redactAttr(groups []string, a slog.Attr) slog.Attr {
	for _, field := range PIIFields {
		if a.Key == field {
			return slog.String(a.Key, Redaction)
		}
	}
	return a
}

// Setup はPII秘匿付きJSON構造化ログ出力のslog.Loggerを生成して返す。
// writerが指定された場合はそのwriterに出力する。
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: redactAttr,
	})
	return slog.New(handler)
}

// SetupDefault はPII秘匿付きJSON構造化ログ出力をグローバルロガーとして設定する。
// writerが指定された場合はそのwriterに出力する。
// 本番ではos.Stdoutを渡すことを想定している。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w)
	slog.SetDefault(logger)
}

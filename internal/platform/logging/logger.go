// Package logging はslogのハンドラー設定を提供します。
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New はレベルと形式（text / json）を指定してロガーを生成します。
// 不明なレベルはinfoとして扱います。
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

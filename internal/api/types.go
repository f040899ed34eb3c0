// Package api はフィーチャー横断で共有するHTTPレスポンス型を定義します。
package api

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

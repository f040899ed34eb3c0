// Package http は外部API呼び出し用のHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部API（Gemini など）呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//   - userAgent: 空でなければ、未設定のリクエストにUser-Agentを付与
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にカスタムクライアントを使用すること
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	var rt http.RoundTripper = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	if userAgent != "" {
		rt = userAgentTransport{next: rt, userAgent: userAgent}
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTripperはリクエストを変更してはならないため複製する
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(clone)
}

// Package middleware はHTTPリクエスト共通のGinミドルウェアを提供します。
package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID はリクエストIDを受け渡すヘッダー名です。
	HeaderRequestID = "X-Request-ID"
	// ContextRequestID はgin.Contextに保存するリクエストIDのキーです。
	ContextRequestID = "requestID"

	maxRequestIDLen = 128
)

// RequestID は受信したX-Request-IDを引き継ぐか、なければUUIDを採番してレスポンスに付与します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// AccessLog はリクエストIDを含むアクセスログをslogで出力します。
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", c.GetString(ContextRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", strconv.Itoa(status),
			"duration", time.Since(start),
		}
		if status >= 500 {
			slog.Error("request failed", attrs...)
			return
		}
		slog.Info("request handled", attrs...)
	}
}

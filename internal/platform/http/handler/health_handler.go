// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存先（DB・Redisなど）の疎通を確認する関数です。
type Check func(ctx context.Context) error

// HealthHandler は /healthz（生存確認）と /readyz（依存先の準備確認）を処理します。
type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewHealthHandler は名前付きのチェックを持つHealthHandlerを生成します。
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// ReadyResponse は /readyz のレスポンスです。
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health はプロセスの生存のみを返します。HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func (h *HealthHandler) Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Ready は登録されたすべてのチェックを実行し、1つでも失敗すれば503を返します。
func (h *HealthHandler) Ready(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res := ReadyResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			res.Checks[name] = err.Error()
			res.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}
	c.JSON(code, res)
}

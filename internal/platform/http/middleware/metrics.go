package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver はHTTPリクエストの計測値を受け取ります。
type HTTPObserver interface {
	ObserveHTTP(method, route, status string, d time.Duration)
}

// Metrics はルートテンプレート単位でリクエスト数とレイテンシを記録します。
// 未登録のパスは "unmatched" にまとめ、ラベルの爆発を防ぎます。
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Package router はHTTPルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appraisalhandler "cardlens/internal/feature/appraisal/transport/handler"
	cataloghandler "cardlens/internal/feature/catalog/transport/handler"
	identhandler "cardlens/internal/feature/identification/transport/handler"
	pricinghandler "cardlens/internal/feature/pricing/transport/handler"
	healthhandler "cardlens/internal/platform/http/handler"
	"cardlens/internal/platform/http/middleware"
	jwtmw "cardlens/internal/platform/jwt"
)

// Handlers はルーターに登録するハンドラー一式です。
type Handlers struct {
	Health    *healthhandler.HealthHandler
	Catalog   *cataloghandler.CatalogHandler
	Corpus    *identhandler.CorpusHandler
	Pricing   *pricinghandler.PricingHandler
	Appraisal *appraisalhandler.AppraisalHandler
}

// Options はルーター全体に関わる設定です。
type Options struct {
	// JWTSecret は管理系エンドポイントのトークン検証に使う署名鍵です。
	JWTSecret string
	// Registry は /metrics で公開するPrometheusレジストリです。nilの場合 /metrics は登録しません。
	Registry *prometheus.Registry
	// HTTPObserver はリクエスト単位の計測先です。nilの場合計測しません。
	HTTPObserver middleware.HTTPObserver
}

// NewRouter はGinエンジンを生成します。
func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	if opts.HTTPObserver != nil {
		r.Use(middleware.Metrics(opts.HTTPObserver))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.GET("/readyz", h.Health.Ready)
	if opts.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	{
		v1.GET("/cards", h.Catalog.List)
		v1.GET("/cards/:name", h.Catalog.Get)
		v1.POST("/appraisals", h.Appraisal.Create)
		v1.POST("/price", h.Pricing.Price)
	}

	// 管理系（JWT必須）
	// スナップショットの再読み込みは scope=admin のトークンのみ許可
	admin := v1.Group("/")
	admin.Use(jwtmw.ScopeRequired(opts.JWTSecret, jwtmw.ScopeAdmin))
	{
		admin.POST("/catalog/refresh", h.Catalog.Refresh)
		admin.POST("/corpus/refresh", h.Corpus.Refresh)
	}

	return r
}

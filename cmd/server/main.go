package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"cardlens/internal/app/di"
	"cardlens/internal/app/router"
	"cardlens/internal/config"
	appraisalhandler "cardlens/internal/feature/appraisal/transport/handler"
	cataloghandler "cardlens/internal/feature/catalog/transport/handler"
	identhandler "cardlens/internal/feature/identification/transport/handler"
	pricinghandler "cardlens/internal/feature/pricing/transport/handler"
	healthhandler "cardlens/internal/platform/http/handler"
	"cardlens/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CARDLENS_CONFIG"))
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := di.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			slog.Error("failed to release resources", "error", err)
		}
	}()

	// 起動時にコーパスを構築しておく（失敗しても初回リクエストで再試行される）
	if _, err := c.Corpus.Refresh(ctx); err != nil {
		slog.Warn("initial corpus build failed", "error", err)
	}

	// JWT_SECRETチェック（未設定だと管理系エンドポイントは常に500）
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("auth.jwt_secret is not set. Refresh endpoints are disabled.")
	}

	engine := router.NewRouter(router.Handlers{
		Health:    healthhandler.NewHealthHandler(c.HealthChecks()),
		Catalog:   cataloghandler.NewCatalogHandler(c.Catalog),
		Corpus:    identhandler.NewCorpusHandler(c.Corpus),
		Pricing:   pricinghandler.NewPricingHandler(c.Pricing),
		Appraisal: appraisalhandler.NewAppraisalHandler(c.Appraisal, cfg.Image.MaxBytes),
	}, router.Options{
		JWTSecret:    cfg.Auth.JWTSecret,
		Registry:     c.Metrics.Registry,
		HTTPObserver: c.Metrics,
	})

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: engine}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

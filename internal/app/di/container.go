// Package di はアプリケーションの依存関係を組み立てます。
package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cardlens/internal/config"
	appraisalusecase "cardlens/internal/feature/appraisal/usecase"
	catalogusecase "cardlens/internal/feature/catalog/usecase"
	"cardlens/internal/feature/identification/adapters/cache"
	identusecase "cardlens/internal/feature/identification/usecase"
	pricingusecase "cardlens/internal/feature/pricing/usecase"
	"cardlens/internal/platform/db"
	healthhandler "cardlens/internal/platform/http/handler"
	"cardlens/internal/platform/metrics"
	platformredis "cardlens/internal/platform/redis"
)

// Container はサーバーとCLIが共有する組み立て済みのコンポーネントです。
type Container struct {
	Config          *config.Config
	DB              *gorm.DB
	Redis           *redis.Client // nil の場合キャッシュ無効
	Metrics         *metrics.Metrics
	Catalog         *catalogusecase.CatalogUsecase
	Corpus          *identusecase.CorpusStore
	DescriptorCache *cache.CachingReferenceSource // Redis無効時はnil
	Pricing         *pricingusecase.PricingUsecase
	Appraisal       *appraisalusecase.AppraisalUsecase

	closers []io.Closer
}

// DBConfig は設定ファイルの値をデータベース接続設定に変換します。
func DBConfig(cfg config.CatalogConfig) db.Config {
	return db.Config{
		Driver:         cfg.Driver,
		DSN:            cfg.DSN,
		User:           cfg.User,
		Password:       cfg.Password,
		Name:           cfg.Name,
		Host:           cfg.Host,
		Port:           cfg.Port,
		InstanceName:   cfg.InstanceName,
		Migrate:        cfg.Migrate,
		ConnectTimeout: cfg.ConnectTimeout,
	}
}

// Build は設定からすべてのコンポーネントを生成します。
// Redisに接続できない場合はキャッシュなしで続行します。
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg, Metrics: metrics.New()}

	gdb, err := db.Open(DBConfig(cfg.Catalog))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c.DB = gdb
	if sqlDB, err := gdb.DB(); err == nil {
		c.closers = append(c.closers, sqlDB)
	}

	rdb, err := platformredis.NewRedisClient(ctx, platformredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		c.Redis = rdb
		c.closers = append(c.closers, rdb)
	}

	c.Catalog, err = NewCatalog(ctx, cfg.Catalog, gdb, c.Metrics)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Corpus, c.DescriptorCache = NewCorpusStore(cfg, c.Redis, c.Metrics)
	c.Pricing = pricingusecase.NewPricingUsecase(nil)

	identifiers, ocrCloser := NewIdentifiers(ctx, cfg, c.Corpus)
	if ocrCloser != nil {
		c.closers = append(c.closers, ocrCloser)
	}

	c.Appraisal, err = appraisalusecase.NewAppraisalUsecase(appraisalusecase.Config{
		MaxImageBytes:  int(cfg.Image.MaxBytes),
		MaxImagePixels: cfg.Image.MaxPixels,
		MemoSize:       cfg.Appraisal.MemoSize,
		MatchThreshold: cfg.Matcher.MinGoodMatches,
	}, c.Catalog, c.Pricing, identifiers, c.Metrics)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// HealthChecks は /readyz で確認する依存先を返します。
func (c *Container) HealthChecks() map[string]healthhandler.Check {
	checks := map[string]healthhandler.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}
	return checks
}

// Close は保持しているクライアントを生成と逆順に解放します。
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

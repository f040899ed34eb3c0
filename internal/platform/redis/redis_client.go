// Package redis はRedisクライアントの生成を提供します。
package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config はRedis接続設定です。Addrが空の場合キャッシュは無効になります。
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient はRedisクライアントを生成し、疎通を確認します。
// Addrが空の場合は (nil, nil) を返し、呼び出し側はキャッシュなしで動作します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Addr == "" {
		slog.Info("redis disabled, descriptor cache off")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr)
	return rdb, nil
}

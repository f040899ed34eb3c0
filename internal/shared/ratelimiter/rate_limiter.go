// Package ratelimiter は外部API呼び出しの頻度を固定ウィンドウで制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は呼び出し頻度の制限を抽象化したインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter はinterval毎にlimit回までの呼び出しを許可します。
// 上限を超えた呼び出しは次のウィンドウまで待機します。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // ウィンドウあたりの上限
	interval  time.Duration // ウィンドウの長さ
	count     int
	lastReset time.Time
	now       func() time.Time
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// Wait は上限に達していれば次のウィンドウまで待機します。
// 待機中にctxが終了した場合はctx.Err()を返し、枠を消費しません。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay := rl.reserve()
		if delay <= 0 {
			return nil
		}
		slog.Warn("rate limit reached, waiting", "limit", rl.limit, "wait", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve は枠を確保できれば0を、できなければ次のウィンドウまでの時間を返します。
// limitが0以下の場合は制限しません。
func (rl *RateLimiter) reserve() time.Duration {
	if rl.limit <= 0 {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}
	if rl.count < rl.limit {
		rl.count++
		return 0
	}
	return rl.interval - now.Sub(rl.lastReset)
}

// Package ratelimit は外部OCR APIへの呼び出し頻度を制限するデコレーターを提供します。
package ratelimit

import (
	"context"
	"fmt"

	"cardlens/internal/feature/identification/usecase"
	"cardlens/internal/shared/ratelimiter"
)

// TextRecognizer は内側のTextRecognizerの前にLimiterで待機します。
type TextRecognizer struct {
	inner   usecase.TextRecognizer
	limiter ratelimiter.Limiter
}

var _ usecase.TextRecognizer = (*TextRecognizer)(nil)

// NewTextRecognizer はTextRecognizerの新しいインスタンスを生成します。
func NewTextRecognizer(inner usecase.TextRecognizer, limiter ratelimiter.Limiter) *TextRecognizer {
	return &TextRecognizer{inner: inner, limiter: limiter}
}

func (r *TextRecognizer) RecognizeText(ctx context.Context, png []byte, whitelist string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("ocr rate limit wait: %w", err)
	}
	return r.inner.RecognizeText(ctx, png, whitelist)
}

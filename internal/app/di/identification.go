package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"cardlens/internal/config"
	appraisalusecase "cardlens/internal/feature/appraisal/usecase"
	"cardlens/internal/feature/identification/adapters/cache"
	"cardlens/internal/feature/identification/adapters/gemini"
	"cardlens/internal/feature/identification/adapters/orb"
	"cardlens/internal/feature/identification/adapters/ratelimit"
	"cardlens/internal/feature/identification/adapters/vision"
	identification "cardlens/internal/feature/identification/domain/entity"
	identusecase "cardlens/internal/feature/identification/usecase"
	infrahttp "cardlens/internal/platform/http"
	"cardlens/internal/platform/metrics"
	"cardlens/internal/shared/ratelimiter"
)

// MatcherConfig は設定ファイルの値を記述子マッチングの調整値に変換します。
func MatcherConfig(cfg config.MatcherConfig) identusecase.MatcherConfig {
	return identusecase.MatcherConfig{
		Ratio:          cfg.Ratio,
		MinGoodMatches: cfg.MinGoodMatches,
		MaxFeatures:    cfg.MaxFeatures,
		Workers:        cfg.Workers,
	}
}

// NewCorpusStore は参照画像コーパスのストアを生成します。
// rdbがnilでない場合は記述子をRedisにキャッシュし、そのデコレーターも返します。
func NewCorpusStore(cfg *config.Config, rdb *redis.Client, m *metrics.Metrics) (*identusecase.CorpusStore, *cache.CachingReferenceSource) {
	var source identusecase.ReferenceSource = identusecase.ExtractingSource{Extractor: orb.NewExtractor()}

	var cached *cache.CachingReferenceSource
	if rdb != nil {
		cached = cache.NewCachingReferenceSource(rdb, cfg.Corpus.CacheTTL, source, "corpus")
		source = cached
	}

	builder := identusecase.NewCorpusBuilder(source, MatcherConfig(cfg.Matcher))
	return identusecase.NewCorpusStore(builder, cfg.Corpus.Dir).WithObserver(m), cached
}

// NewTextRecognizer は設定されたプロバイダーのOCRクライアントを生成します。
// ocr.rate_limitが正の場合は1分あたりの呼び出し回数を制限します。
// 戻り値のio.Closerはnilの場合があります。
func NewTextRecognizer(ctx context.Context, cfg config.OCRConfig) (identusecase.TextRecognizer, io.Closer, error) {
	r, closer, err := newProviderRecognizer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.RateLimit > 0 {
		r = ratelimit.NewTextRecognizer(r, ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute))
	}
	return r, closer, nil
}

func newProviderRecognizer(ctx context.Context, cfg config.OCRConfig) (identusecase.TextRecognizer, io.Closer, error) {
	switch cfg.Provider {
	case "gemini":
		hc := infrahttp.NewHTTPClient(cfg.Timeout, "cardlens")
		r, err := gemini.NewGeminiTextRecognizer(ctx, cfg.GeminiModel, hc)
		if err != nil {
			return nil, nil, err
		}
		return r, nil, nil
	case "vision", "":
		r, err := vision.NewVisionTextRecognizer(ctx)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		return nil, nil, fmt.Errorf("unknown ocr provider %q", cfg.Provider)
	}
}

// NewIdentifiers は識別方式ごとの実装を組み立てます。
// 文字認識クライアントを生成できない場合はOCR方式を登録せず、ORB方式のみで動作します。
func NewIdentifiers(ctx context.Context, cfg *config.Config, corpus identusecase.CorpusProvider) (map[identification.Strategy]appraisalusecase.Identifier, io.Closer) {
	ids := map[identification.Strategy]appraisalusecase.Identifier{
		identification.StrategyORB: identusecase.NewDescriptorMatcher(orb.NewExtractor(), corpus, MatcherConfig(cfg.Matcher)),
	}

	ocr, closer, err := NewTextRecognizer(ctx, cfg.OCR)
	if err != nil {
		slog.Warn("ocr unavailable, text identification disabled", "provider", cfg.OCR.Provider, "error", err)
		return ids, nil
	}
	ids[identification.StrategyOCR] = identusecase.NewTextIdentifier(ocr, cfg.OCR.MinWidth)
	return ids, closer
}

// Package usecase はappraisalフィーチャーのビジネスロジック（識別から価格推定までの一連の処理）を実装します。
package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"cardlens/internal/feature/appraisal/domain/entity"
	catalog "cardlens/internal/feature/catalog/domain/entity"
	identification "cardlens/internal/feature/identification/domain/entity"
	pricing "cardlens/internal/feature/pricing/domain/entity"
)

const (
	// DefaultMaxImageBytes は画像アップロードの最大サイズ（10MB）です。
	DefaultMaxImageBytes = 10 * 1024 * 1024
	// DefaultMaxImagePixels はデコード後の画素数の上限（4000万画素）です。
	DefaultMaxImagePixels = 40_000_000
	// DefaultMemoSize は価格推定結果を保持する件数です。
	DefaultMemoSize = 256
)

// Identifier は画像からカードを識別する方式です。記述子マッチングとテキスト照合が実装します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Identifier interface {
	Identify(ctx context.Context, image []byte, cat *catalog.Catalog) (identification.MatchResult, error)
}

// CatalogProvider は現在のカタログのスナップショットを返します。
type CatalogProvider interface {
	Snapshot(ctx context.Context) (*catalog.Catalog, error)
}

// PriceEstimator は基準価格・レアリティ・状態から推定価格を求めます。
type PriceEstimator interface {
	Estimate(basePrice float64, rarityScore int, condition pricing.Condition) pricing.PriceEstimate
}

// Recorder は鑑定結果のメトリクスを記録します。
type Recorder interface {
	ObserveAppraisal(strategy, status string, d time.Duration)
	IncFallback()
}

// Config はAppraisalUsecaseの設定です。
type Config struct {
	MaxImageBytes  int
	MaxImagePixels int
	MemoSize       int
	// MatchThreshold は記述子マッチングの採用閾値で、未識別時の結果に含めます。
	MatchThreshold int
}

// memoKey は推定価格を一意に決める入力の組です。
type memoKey struct {
	basePrice float64
	rarity    int
	condition pricing.Condition
}

// AppraisalUsecase は識別方式を1つ選んで画像を識別し、カタログと照合して価格を推定します。
type AppraisalUsecase struct {
	identifiers map[identification.Strategy]Identifier
	catalog     CatalogProvider
	pricer      PriceEstimator
	recorder    Recorder
	memo        *lru.Cache[memoKey, pricing.PriceEstimate]
	cfg         Config
}

// NewAppraisalUsecase はAppraisalUsecaseの新しいインスタンスを生成します。
// recorderはnilでも構いません。
func NewAppraisalUsecase(cfg Config, cat CatalogProvider, pricer PriceEstimator, identifiers map[identification.Strategy]Identifier, recorder Recorder) (*AppraisalUsecase, error) {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.MaxImagePixels <= 0 {
		cfg.MaxImagePixels = DefaultMaxImagePixels
	}
	if cfg.MemoSize <= 0 {
		cfg.MemoSize = DefaultMemoSize
	}
	memo, err := lru.New[memoKey, pricing.PriceEstimate](cfg.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create estimate cache: %w", err)
	}
	return &AppraisalUsecase{
		identifiers: identifiers,
		catalog:     cat,
		pricer:      pricer,
		recorder:    recorder,
		memo:        memo,
		cfg:         cfg,
	}, nil
}

// IdentifyAndPrice は画像を指定の方式で識別し、状態に応じた推定価格を返します。
//
// 識別できなかった場合やカタログに該当が無い場合も、エラーではなく結果の種別で表します。
// エラーを返すのは入力の検証に失敗した場合と、識別処理（OCR API等）が失敗した場合のみです。
func (u *AppraisalUsecase) IdentifyAndPrice(ctx context.Context, image []byte, condition pricing.Condition, strategy identification.Strategy) (*entity.Appraisal, error) {
	start := time.Now()

	if err := u.validateImage(image); err != nil {
		return nil, err
	}
	identifier, ok := u.identifiers[strategy]
	if !ok {
		if strategy != identification.StrategyORB && strategy != identification.StrategyOCR {
			return nil, fmt.Errorf("%w: %q", identification.ErrUnknownStrategy, strategy)
		}
		return nil, fmt.Errorf("%w: %q", identification.ErrStrategyUnavailable, strategy)
	}

	// 1回の鑑定の間は同じスナップショットを使う
	cat, err := u.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	res, err := identifier.Identify(ctx, image, cat)
	if err != nil {
		slog.Error("identification failed", "strategy", strategy, "error", err)
		return nil, fmt.Errorf("identification failed: %w", err)
	}

	a := u.resolve(res, cat, condition, strategy)
	if u.recorder != nil {
		u.recorder.ObserveAppraisal(string(strategy), string(a.Status), time.Since(start))
	}
	slog.Info("appraisal finished",
		"strategy", strategy, "status", a.Status, "candidate", a.CandidateID, "score", a.Score)
	return a, nil
}

func (u *AppraisalUsecase) resolve(res identification.MatchResult, cat *catalog.Catalog, condition pricing.Condition, strategy identification.Strategy) *entity.Appraisal {
	a := &entity.Appraisal{
		Strategy:  strategy,
		Condition: condition,
		Score:     res.Score,
	}

	if res.Status == identification.StatusNoCorpus {
		a.Status = entity.StatusNoCorpus
		return a
	}
	if !res.Matched() {
		a.Status = entity.StatusUnidentified
		if strategy == identification.StrategyORB {
			a.Threshold = u.cfg.MatchThreshold
		}
		return a
	}

	a.CandidateID = res.CandidateID
	card, ok := u.lookup(res, cat)
	if !ok {
		a.Status = entity.StatusMatchedUnknown
		return a
	}

	est := u.estimate(card, condition)
	a.Status = entity.StatusPriced
	a.Card = &card
	a.Estimate = &est
	return a
}

// lookup は一致した候補をカタログの行に解決します。
// テキスト照合は行を直接持っているため、そのまま使います。
func (u *AppraisalUsecase) lookup(res identification.MatchResult, cat *catalog.Catalog) (catalog.Card, bool) {
	if res.Card != nil {
		return *res.Card, true
	}
	return cat.FindByStem(res.CandidateID)
}

func (u *AppraisalUsecase) estimate(card catalog.Card, condition pricing.Condition) pricing.PriceEstimate {
	key := memoKey{basePrice: card.BasePrice, rarity: card.RarityScore, condition: condition}
	if est, ok := u.memo.Get(key); ok {
		return est
	}
	est := u.pricer.Estimate(card.BasePrice, card.RarityScore, condition)
	if est.Method == pricing.MethodFallback && u.recorder != nil {
		u.recorder.IncFallback()
	}
	u.memo.Add(key, est)
	return est
}

func (u *AppraisalUsecase) validateImage(data []byte) error {
	if len(data) == 0 {
		return entity.ErrEmptyImage
	}
	if len(data) > u.cfg.MaxImageBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", entity.ErrImageTooLarge, len(data), u.cfg.MaxImageBytes)
	}
	switch http.DetectContentType(data) {
	case "image/png", "image/jpeg":
	default:
		return entity.ErrUnsupportedImage
	}

	// ヘッダーだけを読んで寸法を確認し、展開後に巨大になる画像をデコード前に弾く
	dim, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", identification.ErrUndecodableImage, err)
	}
	if pixels := int64(dim.Width) * int64(dim.Height); pixels > int64(u.cfg.MaxImagePixels) {
		return fmt.Errorf("%w: %dx%d pixels (max %d)", entity.ErrImageTooLarge, dim.Width, dim.Height, u.cfg.MaxImagePixels)
	}
	return nil
}

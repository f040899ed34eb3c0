// Package usecase はidentificationフィーチャーのビジネスロジック（記述子マッチング・テキスト照合）を実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	catalog "cardlens/internal/feature/catalog/domain/entity"
	"cardlens/internal/feature/identification/domain/entity"
)

const (
	// DefaultRatio はratio testの係数です。
	DefaultRatio = 0.75
	// DefaultMinGoodMatches は一致と判定する良好な対応点数の下限です（この値を超える必要があります）。
	DefaultMinGoodMatches = 10
	// DefaultMaxFeatures は1画像から抽出する特徴点の上限です。
	DefaultMaxFeatures = 1000
	// DefaultWorkers は参照画像を並列に採点するgoroutine数です。
	DefaultWorkers = 4
)

// DescriptorExtractor は画像から特徴点記述子を抽出する機能を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type DescriptorExtractor interface {
	// Extract は最大maxFeatures個の記述子を返します。特徴点が無い場合は空スライスを返します。
	Extract(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error)
}

// CorpusProvider は現在の参照コーパスのスナップショットを返します。
type CorpusProvider interface {
	Current(ctx context.Context) (*entity.Corpus, error)
}

// MatcherConfig は記述子マッチングの調整値です。
type MatcherConfig struct {
	Ratio          float64
	MinGoodMatches int
	MaxFeatures    int
	Workers        int
}

// DefaultMatcherConfig は既定の調整値を返します。
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		Ratio:          DefaultRatio,
		MinGoodMatches: DefaultMinGoodMatches,
		MaxFeatures:    DefaultMaxFeatures,
		Workers:        DefaultWorkers,
	}
}

func (c MatcherConfig) normalized() MatcherConfig {
	if c.Ratio <= 0 || c.Ratio > 1 {
		c.Ratio = DefaultRatio
	}
	if c.MinGoodMatches < 0 {
		c.MinGoodMatches = DefaultMinGoodMatches
	}
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = DefaultMaxFeatures
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	return c
}

// DescriptorMatcher はクエリ画像の記述子を参照コーパスと照合します。
type DescriptorMatcher struct {
	extractor DescriptorExtractor
	corpus    CorpusProvider
	cfg       MatcherConfig
}

// NewDescriptorMatcher はDescriptorMatcherの新しいインスタンスを生成します。
func NewDescriptorMatcher(extractor DescriptorExtractor, corpus CorpusProvider, cfg MatcherConfig) *DescriptorMatcher {
	return &DescriptorMatcher{extractor: extractor, corpus: corpus, cfg: cfg.normalized()}
}

// Identify はクエリ画像から記述子を抽出し、現在のコーパスと照合します。
// カタログは使用しません（候補IDの解決は呼び出し側で行います）。
func (m *DescriptorMatcher) Identify(ctx context.Context, image []byte, _ *catalog.Catalog) (entity.MatchResult, error) {
	query, err := m.extractor.Extract(ctx, image, m.cfg.MaxFeatures)
	if err != nil {
		return entity.MatchResult{}, fmt.Errorf("failed to extract query descriptors: %w", err)
	}
	if len(query) == 0 {
		return entity.NoMatch(0), nil
	}

	corpus, err := m.corpus.Current(ctx)
	if err != nil {
		return entity.MatchResult{}, fmt.Errorf("failed to load reference corpus: %w", err)
	}
	res := m.Match(query, corpus)
	slog.Debug("descriptor match finished",
		"status", res.Status, "candidate", res.CandidateID, "score", res.Score, "references", corpus.Len())
	return res, nil
}

// Match はクエリ記述子をコーパスの各参照と照合し、最良の候補を返します。
//
// 各参照は並列に採点されますが、最良候補はコーパス順に選ぶため、同点の場合は先に現れた参照が残ります。
func (m *DescriptorMatcher) Match(query []entity.Descriptor, corpus *entity.Corpus) entity.MatchResult {
	if len(query) == 0 {
		return entity.NoMatch(0)
	}
	if corpus.Len() == 0 {
		return entity.MatchResult{Status: entity.StatusNoCorpus}
	}

	scores := make([]int, corpus.Len())
	var g errgroup.Group
	g.SetLimit(m.cfg.Workers)
	for i := range scores {
		g.Go(func() error {
			scores[i] = GoodMatches(query, corpus.At(i).Descriptors, m.cfg.Ratio)
			return nil
		})
	}
	_ = g.Wait()

	best, bestID := 0, ""
	for i, s := range scores {
		if s > best {
			best, bestID = s, corpus.At(i).ID
		}
	}
	if best > m.cfg.MinGoodMatches {
		return entity.MatchResult{Status: entity.StatusMatched, CandidateID: bestID, Score: best}
	}
	return entity.NoMatch(best)
}

// GoodMatches はクエリの各記述子について参照側の2近傍をハミング距離で求め、
// 最近傍の距離が第2近傍のratio倍未満である対応の数を返します。
// 参照側の記述子が2個未満の場合、2近傍が成立しないため0を返します。
func GoodMatches(query, ref []entity.Descriptor, ratio float64) int {
	if len(ref) < 2 {
		return 0
	}
	good := 0
	for _, q := range query {
		d1, d2 := entity.DescriptorSize*8+1, entity.DescriptorSize*8+1
		for _, r := range ref {
			d := q.Distance(r)
			if d < d1 {
				d1, d2 = d, d1
			} else if d < d2 {
				d2 = d
			}
		}
		if float64(d1) < ratio*float64(d2) {
			good++
		}
	}
	return good
}

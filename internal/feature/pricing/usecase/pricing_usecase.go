// Package usecase はpricingフィーチャーのビジネスロジック（価格倍率・推定価格の算出）を実装します。
package usecase

import (
	"log/slog"
	"math"

	"cardlens/internal/feature/pricing/domain/entity"
	"cardlens/internal/feature/pricing/fuzzy"
)

const (
	// MinMultiplier は倍率の下限です。
	MinMultiplier = 0.0
	// MaxMultiplier は倍率の上限です。
	MaxMultiplier = 2.0
)

// MultiplierEvaluator はレアリティと状態の数値から倍率を推論する機能を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MultiplierEvaluator interface {
	Evaluate(rarity, condition float64) (float64, error)
}

// PricingUsecase はファジィ推論とフォールバック式で価格倍率を算出します。
// 状態を持たないため、複数のgoroutineから同時に利用できます。
type PricingUsecase struct {
	engine MultiplierEvaluator
}

// NewPricingUsecase はPricingUsecaseの新しいインスタンスを生成します。
// engineがnilの場合はプロセス共有のfuzzy.Defaultを使用します。
func NewPricingUsecase(engine MultiplierEvaluator) *PricingUsecase {
	if engine == nil {
		engine = fuzzy.Default
	}
	return &PricingUsecase{engine: engine}
}

// PriceMultiplier はレアリティスコアと状態から[0, 2]の価格倍率を返します。
// ファジィ推論が値を出せない場合はフォールバック式に切り替えます。この関数は失敗しません。
func (u *PricingUsecase) PriceMultiplier(rarityScore int, condition entity.Condition) (float64, entity.Method) {
	m, err := u.engine.Evaluate(float64(rarityScore), condition.Severity())
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
		slog.Warn("fuzzy evaluation failed, using fallback formula",
			"error", err, "rarity", rarityScore, "condition", condition)
		return Fallback(rarityScore, condition), entity.MethodFallback
	}
	return clamp(m), entity.MethodFuzzy
}

// Estimate は基準価格・レアリティ・状態から推定価格を求めます。
func (u *PricingUsecase) Estimate(basePrice float64, rarityScore int, condition entity.Condition) entity.PriceEstimate {
	m, method := u.PriceMultiplier(rarityScore, condition)
	return entity.PriceEstimate{
		Multiplier:     m,
		EstimatedPrice: basePrice * m,
		Method:         method,
	}
}

// Fallback は conditionFactor × (0.5 + rarity/100 × 0.5) で倍率を求める決定的な計算式です。
func Fallback(rarityScore int, condition entity.Condition) float64 {
	rarity := float64(rarityScore)/100*0.5 + 0.5
	return clamp(condition.FallbackFactor() * rarity)
}

func clamp(m float64) float64 {
	return math.Min(MaxMultiplier, math.Max(MinMultiplier, m))
}

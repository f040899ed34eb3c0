package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"cardlens/internal/feature/pricing/domain/entity"
	"cardlens/internal/feature/pricing/usecase"
)

// failingEvaluator は常にエラーを返すMultiplierEvaluatorのモックです。
type failingEvaluator struct {
	calls int
}

func (f *failingEvaluator) Evaluate(rarity, condition float64) (float64, error) {
	f.calls++
	return 0, errors.New("evaluation not feasible")
}

// fixedEvaluator は固定値を返すMultiplierEvaluatorのモックです。
type fixedEvaluator struct {
	value float64
}

func (f fixedEvaluator) Evaluate(rarity, condition float64) (float64, error) {
	return f.value, nil
}

// TestPricingUsecase_PriceMultiplier_Bounds はすべての入力で倍率が[0, 2]に収まることを検証します。
func TestPricingUsecase_PriceMultiplier_Bounds(t *testing.T) {
	t.Parallel()

	uc := usecase.NewPricingUsecase(nil)
	for _, c := range entity.Conditions() {
		for r := 0; r <= 100; r++ {
			m, method := uc.PriceMultiplier(r, c)
			assert.Equal(t, entity.MethodFuzzy, method)
			assert.GreaterOrEqual(t, m, usecase.MinMultiplier)
			assert.LessOrEqual(t, m, usecase.MaxMultiplier)
		}
	}
}

// TestPricingUsecase_PriceMultiplier_MonotonicInRarity はPlayed・Mintでレアリティに対して倍率が減少しないことを検証します。
// Damagedはレアリティ38〜48付近で重心がわずかに下がるため対象外です（DESIGN.md参照）。
func TestPricingUsecase_PriceMultiplier_MonotonicInRarity(t *testing.T) {
	t.Parallel()

	uc := usecase.NewPricingUsecase(nil)
	for _, c := range []entity.Condition{entity.ConditionPlayed, entity.ConditionMint} {
		prev := -1.0
		for r := 0; r <= 100; r++ {
			m, _ := uc.PriceMultiplier(r, c)
			assert.GreaterOrEqual(t, m+1e-12, prev, "condition=%s rarity=%d", c, r)
			prev = m
		}
	}
}

// TestPricingUsecase_PriceMultiplier_MonotonicInCondition は同じレアリティで状態が良いほど倍率が減少しないことを検証します。
func TestPricingUsecase_PriceMultiplier_MonotonicInCondition(t *testing.T) {
	t.Parallel()

	uc := usecase.NewPricingUsecase(nil)
	for r := 0; r <= 100; r++ {
		damaged, _ := uc.PriceMultiplier(r, entity.ConditionDamaged)
		played, _ := uc.PriceMultiplier(r, entity.ConditionPlayed)
		mint, _ := uc.PriceMultiplier(r, entity.ConditionMint)

		assert.GreaterOrEqual(t, mint+1e-12, played, "rarity=%d", r)
		assert.GreaterOrEqual(t, mint+1e-12, damaged, "rarity=%d", r)
		if r >= 20 {
			assert.GreaterOrEqual(t, played+1e-12, damaged, "rarity=%d", r)
		}
	}
}

// TestPricingUsecase_Estimate_EndToEnd は高レアリティカードのMint/Damaged価格帯を検証します。
func TestPricingUsecase_Estimate_EndToEnd(t *testing.T) {
	t.Parallel()

	uc := usecase.NewPricingUsecase(nil)

	mint := uc.Estimate(120, 95, entity.ConditionMint)
	assert.Equal(t, entity.MethodFuzzy, mint.Method)
	assert.InDelta(t, 1.5, mint.Multiplier, 1e-9)
	assert.GreaterOrEqual(t, mint.EstimatedPrice, 120.0)
	assert.LessOrEqual(t, mint.EstimatedPrice, 240.0)

	damaged := uc.Estimate(120, 95, entity.ConditionDamaged)
	assert.Greater(t, damaged.Multiplier, 0.4)
	assert.Less(t, damaged.Multiplier, 1.2)
	assert.Less(t, damaged.EstimatedPrice, mint.EstimatedPrice)
}

// TestPricingUsecase_PriceMultiplier_Fallback はエンジンが失敗した場合にフォールバック式が使われることを検証します。
func TestPricingUsecase_PriceMultiplier_Fallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rarity    int
		condition entity.Condition
		want      float64
	}{
		{"mint rarity 80", 80, entity.ConditionMint, 0.9},
		{"played rarity 0", 0, entity.ConditionPlayed, 0.375},
		{"damaged rarity 100", 100, entity.ConditionDamaged, 0.5},
		{"unknown condition uses played factor", 100, entity.Condition("Graded"), 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &failingEvaluator{}
			uc := usecase.NewPricingUsecase(engine)

			m, method := uc.PriceMultiplier(tt.rarity, tt.condition)

			assert.Equal(t, tt.want, m)
			assert.Equal(t, entity.MethodFallback, method)
			assert.Equal(t, 1, engine.calls)
		})
	}
}

// TestFallback_MonotonicAgreement はフォールバック式がファジィ推論と同じ向きに単調であることを検証します。
func TestFallback_MonotonicAgreement(t *testing.T) {
	t.Parallel()

	for _, c := range entity.Conditions() {
		prev := -1.0
		for r := 0; r <= 100; r++ {
			m := usecase.Fallback(r, c)
			assert.GreaterOrEqual(t, m, prev)
			prev = m
		}
	}
	for r := 0; r <= 100; r++ {
		assert.LessOrEqual(t, usecase.Fallback(r, entity.ConditionDamaged), usecase.Fallback(r, entity.ConditionPlayed))
		assert.LessOrEqual(t, usecase.Fallback(r, entity.ConditionPlayed), usecase.Fallback(r, entity.ConditionMint))
	}
}

// TestPricingUsecase_PriceMultiplier_ClampsEngineOutput はエンジンが範囲外を返しても[0, 2]に丸められることを検証します。
func TestPricingUsecase_PriceMultiplier_ClampsEngineOutput(t *testing.T) {
	t.Parallel()

	high, _ := usecase.NewPricingUsecase(fixedEvaluator{value: 3.2}).PriceMultiplier(50, entity.ConditionMint)
	low, _ := usecase.NewPricingUsecase(fixedEvaluator{value: -1}).PriceMultiplier(50, entity.ConditionMint)

	assert.Equal(t, 2.0, high)
	assert.Equal(t, 0.0, low)
}

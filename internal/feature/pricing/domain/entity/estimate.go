package entity

// Method は倍率の算出方法です。
type Method string

const (
	// MethodFuzzy はMamdani型ファジィ推論で算出したことを示します。
	MethodFuzzy Method = "fuzzy"
	// MethodFallback は線形のフォールバック式で算出したことを示します。
	MethodFallback Method = "fallback"
)

// PriceEstimate は基準価格に倍率を掛けた推定価格です。保存はされません。
type PriceEstimate struct {
	Multiplier     float64 // 価格倍率（0.0 ~ 2.0）
	EstimatedPrice float64 // BasePrice × Multiplier
	Method         Method
}

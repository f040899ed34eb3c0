// Package dto はpricing HTTP APIのデータ転送オブジェクトを定義します。
package dto

// PriceRequest は価格倍率算出APIのリクエストです。
// BasePriceを指定した場合はレスポンスに推定価格が含まれます。
type PriceRequest struct {
	RarityScore *int     `json:"rarity_score" binding:"required"`
	Condition   string   `json:"condition"`
	BasePrice   *float64 `json:"base_price,omitempty" binding:"omitempty,gt=0"`
}

// PriceResponse は価格倍率算出APIのレスポンスです。
type PriceResponse struct {
	RarityScore    int      `json:"rarity_score"`
	Condition      string   `json:"condition"`
	Multiplier     float64  `json:"multiplier"`
	Method         string   `json:"method"`
	EstimatedPrice *float64 `json:"estimated_price,omitempty"`
}

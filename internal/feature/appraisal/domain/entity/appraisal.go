// Package entity はappraisalフィーチャーのドメインモデルを定義します。
package entity

import (
	catalog "cardlens/internal/feature/catalog/domain/entity"
	identification "cardlens/internal/feature/identification/domain/entity"
	pricing "cardlens/internal/feature/pricing/domain/entity"
)

// Status は鑑定結果の種別です。
type Status string

const (
	// StatusPriced はカードを特定し、価格を推定できたことを表します。
	StatusPriced Status = "priced"
	// StatusUnidentified はどの候補も閾値に届かなかったことを表します。
	StatusUnidentified Status = "unidentified"
	// StatusMatchedUnknown は候補は一致したが、カタログに該当するカードが無いことを表します。
	StatusMatchedUnknown Status = "matched_unknown"
	// StatusNoCorpus は参照画像が無く、記述子マッチングができなかったことを表します。
	StatusNoCorpus Status = "no_corpus"
)

// Appraisal は1枚の画像に対する識別と価格推定の結果です。
type Appraisal struct {
	Status    Status
	Strategy  identification.Strategy
	Condition pricing.Condition
	// CandidateID は一致した参照IDまたはカード名です。StatusPriced・StatusMatchedUnknownで設定されます。
	CandidateID string
	// Score は識別の確信度です。StatusUnidentifiedでは最良値が入ります。
	Score int
	// Threshold はScoreが超える必要のある値です。記述子マッチングでのみ設定されます。
	Threshold int
	// Card と Estimate はStatusPricedの場合のみ設定されます。
	Card     *catalog.Card
	Estimate *pricing.PriceEstimate
}

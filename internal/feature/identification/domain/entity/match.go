package entity

import (
	"strings"

	catalog "cardlens/internal/feature/catalog/domain/entity"
)

// Status は識別結果の種別です。
type Status string

const (
	// StatusMatched は閾値を超えた候補が見つかったことを表します。
	StatusMatched Status = "matched"
	// StatusNoMatch は候補が閾値に届かなかったことを表します。Scoreには最良値が入ります。
	StatusNoMatch Status = "no_match"
	// StatusNoCorpus は参照画像が1枚も無いことを表します。
	StatusNoCorpus Status = "no_corpus"
)

// Strategy は識別方式です。
type Strategy string

const (
	// StrategyORB は特徴点記述子によるマッチングです。
	StrategyORB Strategy = "orb"
	// StrategyOCR は文字認識とカード名の単語照合です。
	StrategyOCR Strategy = "ocr"
)

// MatchResult は1回の識別結果です。
// StatusMatchedの場合、Scoreは必ず方式ごとの閾値を満たしています。
type MatchResult struct {
	Status Status
	// CandidateID は記述子マッチングでの参照ID、テキスト照合ではカード名です。
	CandidateID string
	// Card はテキスト照合でのみ設定され、カタログの行を直接指します。
	Card *catalog.Card
	// Score は記述子マッチングでは良好な対応点の数、テキスト照合では一致した単語数です。
	Score int
}

// Matched は候補が採用されたかどうかを返します。
func (r MatchResult) Matched() bool {
	return r.Status == StatusMatched
}

// NoMatch はscoreを保持した不一致の結果を返します。
func NoMatch(score int) MatchResult {
	return MatchResult{Status: StatusNoMatch, Score: score}
}

// ParseStrategy は識別方式を解釈します。大文字小文字は区別せず、空文字列はStrategyORBです。
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyORB:
		return StrategyORB, nil
	case StrategyOCR:
		return StrategyOCR, nil
	default:
		return "", ErrUnknownStrategy
	}
}

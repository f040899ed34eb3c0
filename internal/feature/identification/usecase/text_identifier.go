package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	catalog "cardlens/internal/feature/catalog/domain/entity"
	"cardlens/internal/feature/identification/domain/entity"
)

// OCRWhitelist はOCRで認識を許可する文字です。
const OCRWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// minWordShare は候補として採用するために一致が必要な単語の割合です。
const minWordShare = 0.5

// TextRecognizer は前処理済み画像から文字列を抽出する機能を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TextRecognizer interface {
	// RecognizeText はPNG画像からwhitelistの文字のみを含むテキストを返します。
	RecognizeText(ctx context.Context, png []byte, whitelist string) (string, error)
}

// TextIdentifier はOCR結果とカード名の単語を照合してカードを識別します。
type TextIdentifier struct {
	ocr      TextRecognizer
	minWidth int
}

// NewTextIdentifier はTextIdentifierの新しいインスタンスを生成します。
// minWidthが0以下の場合はDefaultMinOCRWidthを使用します。
func NewTextIdentifier(ocr TextRecognizer, minWidth int) *TextIdentifier {
	if minWidth <= 0 {
		minWidth = DefaultMinOCRWidth
	}
	return &TextIdentifier{ocr: ocr, minWidth: minWidth}
}

// Identify は画像を前処理してOCRにかけ、抽出したテキストをカタログと照合します。
// テキストが抽出できなかった場合はエラーではなく不一致として返します。
func (t *TextIdentifier) Identify(ctx context.Context, image []byte, cat *catalog.Catalog) (entity.MatchResult, error) {
	gray, err := Preprocess(image, t.minWidth)
	if err != nil {
		return entity.MatchResult{}, err
	}
	png, err := EncodePNG(gray)
	if err != nil {
		return entity.MatchResult{}, err
	}
	text, err := t.ocr.RecognizeText(ctx, png, OCRWhitelist)
	if err != nil {
		return entity.MatchResult{}, fmt.Errorf("text recognition failed: %w", err)
	}
	text = strings.TrimSpace(text)
	res := MatchText(text, cat)
	slog.Debug("text match finished",
		"status", res.Status, "candidate", res.CandidateID, "score", res.Score, "text_length", len(text))
	return res, nil
}

// MatchText は抽出テキストにカード名の各単語が部分文字列として含まれる数を数え、最良のカードを返します。
//
// 候補は一致数が現在の最良値より大きく、かつカード名の単語数の半分以上である場合にのみ採用されます。
// 同点の場合はカタログ順で先のカードが残ります。不一致の場合、Scoreには採用条件を問わない最大一致数が入ります。
func MatchText(text string, cat *catalog.Catalog) entity.MatchResult {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return entity.NoMatch(0)
	}

	best, bestIdx, maxSeen := 0, -1, 0
	for i := 0; i < cat.Len(); i++ {
		words := strings.Fields(strings.ToLower(cat.At(i).Name))
		count := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				count++
			}
		}
		maxSeen = max(maxSeen, count)
		if count > best && float64(count) >= minWordShare*float64(len(words)) {
			best, bestIdx = count, i
		}
	}

	if bestIdx < 0 {
		return entity.NoMatch(maxSeen)
	}
	card := cat.At(bestIdx)
	return entity.MatchResult{
		Status:      entity.StatusMatched,
		CandidateID: card.Name,
		Card:        &card,
		Score:       best,
	}
}

// KeepWhitelisted はtextからwhitelistに無い文字を取り除きます。空白は単語区切りとして残します。
// 文字種を指定できないOCRエンジンの出力をそろえるために使います。
func KeepWhitelisted(text, whitelist string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if strings.ContainsRune(whitelist, r) {
			return r
		}
		return -1
	}, text)
}

// Package gemini はGoogle Gemini APIのマルチモーダル入力を使用した文字認識クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"cardlens/internal/feature/identification/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// transcribePrompt は画像内の文字を書き起こすためのプロンプトです。
	transcribePrompt = "Transcribe all printed text visible on this trading card. " +
		"Reply with the text only, using the characters %s separated by spaces. Reply with nothing if there is no text."
)

// contentGenerator はgenai.Modelsのうち本パッケージが使用するメソッドです。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiTextRecognizer はGoogle Gemini APIを使用して画像内の文字を認識します。
type GeminiTextRecognizer struct {
	models contentGenerator
	model  string
}

// GeminiTextRecognizerがTextRecognizerを実装していることをコンパイル時に検証します。
var _ usecase.TextRecognizer = (*GeminiTextRecognizer)(nil)

// NewGeminiTextRecognizer はADCを使用してGeminiTextRecognizerの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
// httpClientがnilの場合はSDKの既定クライアントを使用します。
func NewGeminiTextRecognizer(ctx context.Context, model string, httpClient *http.Client) (*GeminiTextRecognizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{HTTPClient: httpClient})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiTextRecognizer{models: client.Models, model: model}, nil
}

// RecognizeText はPNG画像とプロンプトを送信し、書き起こされたテキストを返します。
func (g *GeminiTextRecognizer) RecognizeText(ctx context.Context, png []byte, whitelist string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(png, "image/png"),
			genai.NewPartFromText(fmt.Sprintf(transcribePrompt, describeWhitelist(whitelist))),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	return strings.TrimSpace(usecase.KeepWhitelisted(resp.Text(), whitelist)), nil
}

// describeWhitelist は英数字のみのwhitelistをプロンプト向けの短い表記にします。
func describeWhitelist(whitelist string) string {
	if whitelist == usecase.OCRWhitelist {
		return "A-Z, a-z and 0-9"
	}
	return whitelist
}

// Package vision はGoogle Cloud Vision APIを使用した文字認識クライアントを提供します。
package vision

import (
	"context"
	"fmt"
	"strings"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"

	"cardlens/internal/feature/identification/usecase"
)

// imageAnnotator はVision APIクライアントのうち本パッケージが使用するメソッドです。
type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionTextRecognizer はGoogle Cloud Vision APIのTEXT_DETECTIONで文字を認識します。
type VisionTextRecognizer struct {
	client imageAnnotator
}

// VisionTextRecognizerがTextRecognizerを実装していることをコンパイル時に検証します。
var _ usecase.TextRecognizer = (*VisionTextRecognizer)(nil)

// NewVisionTextRecognizer はADCを使用してVisionTextRecognizerの新しいインスタンスを生成します。
func NewVisionTextRecognizer(ctx context.Context) (*VisionTextRecognizer, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionTextRecognizer{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionTextRecognizer) Close() error {
	return v.client.Close()
}

// RecognizeText は画像内の文字列を抽出します。
// Vision APIは文字種を制限できないため、結果からwhitelist外の文字を取り除きます。
func (v *VisionTextRecognizer) RecognizeText(ctx context.Context, png []byte, whitelist string) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: png},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return "", nil
	}

	if resp.Responses[0].Error != nil {
		return "", fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	// 先頭のアノテーションが画像全体のテキスト
	annotations := resp.Responses[0].TextAnnotations
	if len(annotations) == 0 {
		return "", nil
	}
	return strings.TrimSpace(usecase.KeepWhitelisted(annotations[0].Description, whitelist)), nil
}

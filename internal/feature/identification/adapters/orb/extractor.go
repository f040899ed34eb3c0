// Package orb はOpenCV（gocv）のORBで特徴点記述子を抽出します。
package orb

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"cardlens/internal/feature/identification/domain/entity"
	"cardlens/internal/feature/identification/usecase"
)

// ORBのパラメータ。OpenCVの既定値です。
const (
	scaleFactor   = 1.2
	levels        = 8
	edgeThreshold = 31
	firstLevel    = 0
	wtaK          = 2
	patchSize     = 31
	fastThreshold = 20
)

// Extractor はグレースケールに変換した画像からORB記述子を抽出します。
type Extractor struct{}

// ExtractorがDescriptorExtractorを実装していることをコンパイル時に検証します。
var _ usecase.DescriptorExtractor = Extractor{}

// NewExtractor はExtractorを生成します。
func NewExtractor() Extractor {
	return Extractor{}
}

// Extract は画像をデコードし、最大maxFeatures個の記述子を返します。
// 特徴点が見つからない場合は空スライスを返します。
func (Extractor) Extract(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := gocv.IMDecode(image, gocv.IMReadGrayScale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUndecodableImage, err)
	}
	defer func() { _ = img.Close() }()
	if img.Empty() {
		return nil, entity.ErrUndecodableImage
	}

	detector := gocv.NewORBWithParams(maxFeatures, scaleFactor, levels, edgeThreshold, firstLevel, wtaK,
		gocv.ORBScoreTypeHarris, patchSize, fastThreshold)
	defer func() { _ = detector.Close() }()

	mask := gocv.NewMat()
	defer func() { _ = mask.Close() }()

	_, desc := detector.DetectAndCompute(img, mask)
	defer func() { _ = desc.Close() }()
	if desc.Empty() || desc.Cols() != entity.DescriptorSize {
		return nil, nil
	}
	return entity.DescriptorsFromBytes(desc.ToBytes()), nil
}

package usecase

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"cardlens/internal/feature/identification/domain/entity"
)

// DefaultMinOCRWidth はOCRに渡す画像の最小幅（px）です。
const DefaultMinOCRWidth = 300

// Preprocess はOCR向けに画像を整えます。
// グレースケール化し、幅がminWidth未満ならアスペクト比を保ってCatmull-Romで拡大し、
// 大津の方法で求めた閾値で2値化します。
func Preprocess(data []byte, minWidth int) (*image.Gray, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUndecodableImage, err)
	}
	gray := toGray(src)
	gray = upscale(gray, minWidth)
	Binarize(gray, OtsuThreshold(gray))
	return gray, nil
}

// EncodePNG はグレースケール画像をPNGにエンコードします。
func EncodePNG(img *image.Gray) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	return out
}

func upscale(g *image.Gray, minWidth int) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if w == 0 || w >= minWidth {
		return g
	}
	newH := (h*minWidth + w/2) / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewGray(image.Rect(0, 0, minWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), g, g.Bounds(), draw.Src, nil)
	return dst
}

// OtsuThreshold はクラス間分散が最大となる閾値を返します。
// 画素値がこの閾値を超えるものが前景になります。
func OtsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	for _, p := range g.Pix {
		hist[p]++
	}
	total := len(g.Pix)

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var (
		sumB    float64
		weightB int
		best    = -1.0
		t       int
	)
	for i, n := range hist {
		weightB += n
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(i * n)
		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		v := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if v > best {
			best, t = v, i
		}
	}
	return uint8(t)
}

// Binarize はthresholdを超える画素を255、それ以外を0にします。
func Binarize(g *image.Gray, threshold uint8) {
	for i, p := range g.Pix {
		if p > threshold {
			g.Pix[i] = 0xff
		} else {
			g.Pix[i] = 0
		}
	}
}

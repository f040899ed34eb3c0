// Package handler はappraisalフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cardlens/internal/api"
	"cardlens/internal/feature/appraisal/domain/entity"
	"cardlens/internal/feature/appraisal/transport/http/dto"
	identification "cardlens/internal/feature/identification/domain/entity"
	pricing "cardlens/internal/feature/pricing/domain/entity"
)

// AppraisalUsecase は画像の識別と価格推定のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AppraisalUsecase interface {
	IdentifyAndPrice(ctx context.Context, image []byte, condition pricing.Condition, strategy identification.Strategy) (*entity.Appraisal, error)
}

// formOverhead は画像以外のフォーム項目とマルチパートの区切りに許容するバイト数です。
const formOverhead = 1 << 20

// AppraisalHandler は鑑定のHTTPリクエストを処理します。
type AppraisalHandler struct {
	uc       AppraisalUsecase
	maxBytes int64
}

// NewAppraisalHandler はAppraisalHandlerの新しいインスタンスを生成します。
// maxBytesを超える画像は読み込みを打ち切り、ユースケース側でサイズ超過として扱われます。
// リクエストボディ全体がmaxBytes+1MiBを超える場合は、フォームを解析する前に413を返します。
func NewAppraisalHandler(uc AppraisalUsecase, maxBytes int64) *AppraisalHandler {
	return &AppraisalHandler{uc: uc, maxBytes: maxBytes}
}

// Create は画像をアップロードしてカードを識別し、推定価格を返します。
//
// エンドポイント: POST /v1/appraisals
// Content-Type: multipart/form-data
// フィールド: image（PNG/JPEG）、condition（Damaged/Played/Mint、省略時Mint）、strategy（orb/ocr、省略時orb）
func (h *AppraisalHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+formOverhead)
	if _, err := c.MultipartForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("リクエストボディが上限を超えています", "limit", tooLarge.Limit, "remote_addr", c.ClientIP())
			c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "image is too large"})
			return
		}
	}

	cond, err := pricing.ParseCondition(c.PostForm("condition"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "condition must be one of Damaged, Played, Mint"})
		return
	}
	strategy, err := identification.ParseStrategy(c.PostForm("strategy"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "strategy must be one of orb, ocr"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to read image"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	// 上限+1バイトまで読めばサイズ超過を判定できる
	imageData, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to read image"})
		return
	}

	a, err := h.uc.IdentifyAndPrice(c.Request.Context(), imageData, cond, strategy)
	if err != nil {
		status, msg := errorStatus(err)
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, toResponse(a))
}

// errorStatus はユースケースのエラーをHTTPステータスとメッセージに変換します。
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrEmptyImage):
		return http.StatusBadRequest, "image is empty"
	case errors.Is(err, entity.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "image is too large"
	case errors.Is(err, entity.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType, "image must be png or jpeg"
	case errors.Is(err, identification.ErrUnknownStrategy):
		return http.StatusBadRequest, "strategy must be one of orb, ocr"
	case errors.Is(err, identification.ErrStrategyUnavailable):
		return http.StatusServiceUnavailable, "strategy is not available"
	case errors.Is(err, identification.ErrUndecodableImage):
		return http.StatusUnprocessableEntity, "image could not be decoded"
	default:
		slog.Error("鑑定に失敗", "error", err)
		return http.StatusBadGateway, "identification failed"
	}
}

func toResponse(a *entity.Appraisal) dto.AppraisalResponse {
	res := dto.AppraisalResponse{
		Status:      string(a.Status),
		Strategy:    string(a.Strategy),
		Condition:   string(a.Condition),
		CandidateID: a.CandidateID,
		Score:       a.Score,
		Threshold:   a.Threshold,
	}
	if a.Card != nil {
		res.Card = &dto.CardItem{
			Name:        a.Card.Name,
			Series:      a.Card.Series,
			BasePrice:   a.Card.BasePrice,
			RarityScore: a.Card.RarityScore,
		}
	}
	if a.Estimate != nil {
		m, p := a.Estimate.Multiplier, a.Estimate.EstimatedPrice
		res.Multiplier = &m
		res.EstimatedPrice = &p
		res.Method = string(a.Estimate.Method)
	}
	return res
}

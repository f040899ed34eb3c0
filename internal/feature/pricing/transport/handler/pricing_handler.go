// Package handler はpricingフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cardlens/internal/api"
	"cardlens/internal/feature/pricing/domain/entity"
	"cardlens/internal/feature/pricing/transport/http/dto"
)

// PricingUsecase は価格倍率算出のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PricingUsecase interface {
	Estimate(basePrice float64, rarityScore int, condition entity.Condition) entity.PriceEstimate
}

// PricingHandler は価格倍率算出のHTTPリクエストを処理します。
type PricingHandler struct {
	uc PricingUsecase
}

// NewPricingHandler はPricingHandlerの新しいインスタンスを生成します。
func NewPricingHandler(uc PricingUsecase) *PricingHandler {
	return &PricingHandler{uc: uc}
}

// Price はレアリティスコアと状態から価格倍率を返します。
//
// エンドポイント: POST /v1/price
// Content-Type: application/json
func (h *PricingHandler) Price(c *gin.Context) {
	var req dto.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("price request validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "rarity_score (0-100) is required"})
		return
	}
	if err := entity.ValidateRarity(*req.RarityScore); err != nil {
		slog.Warn("price request validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "rarity_score must be between 0 and 100"})
		return
	}

	cond, err := entity.ParseCondition(req.Condition)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "condition must be one of Damaged, Played, Mint"})
		return
	}

	base := 0.0
	if req.BasePrice != nil {
		base = *req.BasePrice
	}
	est := h.uc.Estimate(base, *req.RarityScore, cond)

	res := dto.PriceResponse{
		RarityScore: *req.RarityScore,
		Condition:   string(cond),
		Multiplier:  est.Multiplier,
		Method:      string(est.Method),
	}
	if req.BasePrice != nil {
		price := est.EstimatedPrice
		res.EstimatedPrice = &price
	}
	c.JSON(http.StatusOK, res)
}

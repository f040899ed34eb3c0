package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cardlens/internal/api"
	"cardlens/internal/feature/catalog/domain/entity"
	"cardlens/internal/feature/catalog/transport/http/dto"
)

// CatalogUsecase はカードカタログに関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type CatalogUsecase interface {
	ListCards(ctx context.Context) ([]entity.Card, error)
	GetCard(ctx context.Context, name string) (entity.Card, error)
	Refresh(ctx context.Context) (*entity.Catalog, error)
}

// CatalogHandler はカードカタログに関するHTTPリクエストを処理します。
type CatalogHandler struct {
	uc CatalogUsecase
}

// NewCatalogHandler は新しい CatalogHandler を作成します。
func NewCatalogHandler(uc CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// List は現在のカタログをカタログ順で返すAPIです。
func (h *CatalogHandler) List(c *gin.Context) {
	cards, err := h.uc.ListCards(c.Request.Context())
	if err != nil {
		slog.Error("failed to list cards", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load catalog"})
		return
	}
	out := make([]dto.CardItem, 0, len(cards))
	for _, card := range cards {
		out = append(out, toItem(card))
	}
	c.JSON(http.StatusOK, out)
}

// Get は名前（大文字小文字を区別しない）で1件のカードを返すAPIです。
//
// エンドポイント: GET /v1/cards/:name
func (h *CatalogHandler) Get(c *gin.Context) {
	card, err := h.uc.GetCard(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, entity.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "card not found"})
			return
		}
		slog.Error("failed to get card", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load catalog"})
		return
	}
	c.JSON(http.StatusOK, toItem(card))
}

func toItem(card entity.Card) dto.CardItem {
	return dto.CardItem{
		Name:        card.Name,
		Series:      card.Series,
		BasePrice:   card.BasePrice,
		RarityScore: card.RarityScore,
	}
}

// Refresh はDBからカタログを再構築し、スナップショットを差し替えます。
// 失敗した場合は既存のスナップショットがそのまま使われます。
func (h *CatalogHandler) Refresh(c *gin.Context) {
	cat, err := h.uc.Refresh(c.Request.Context())
	if err != nil {
		slog.Error("catalog refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "catalog refresh failed"})
		return
	}
	c.JSON(http.StatusOK, dto.RefreshResponse{Cards: cat.Len()})
}

// Package handler はidentificationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cardlens/internal/api"
	"cardlens/internal/feature/identification/domain/entity"
	"cardlens/internal/feature/identification/transport/http/dto"
)

// CorpusRefresher は参照コーパスの再構築を行うユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CorpusRefresher interface {
	Refresh(ctx context.Context) (*entity.Corpus, error)
}

// CorpusHandler は参照コーパスに関するHTTPリクエストを処理します。
type CorpusHandler struct {
	store CorpusRefresher
}

// NewCorpusHandler はCorpusHandlerの新しいインスタンスを生成します。
func NewCorpusHandler(store CorpusRefresher) *CorpusHandler {
	return &CorpusHandler{store: store}
}

// Refresh は参照ディレクトリを読み直してコーパスを差し替えます。
//
// エンドポイント: POST /v1/corpus/refresh
func (h *CorpusHandler) Refresh(c *gin.Context) {
	corpus, err := h.store.Refresh(c.Request.Context())
	if err != nil {
		slog.Error("corpus refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "corpus refresh failed"})
		return
	}
	ids := corpus.IDs()
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, dto.CorpusRefreshResponse{References: corpus.Len(), IDs: ids})
}

package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"cardlens/internal/feature/identification/domain/entity"
	"cardlens/internal/feature/identification/transport/handler"
)

// mockCorpusRefresher はCorpusRefresherインターフェースのモック実装です。
type mockCorpusRefresher struct {
	RefreshFunc func(ctx context.Context) (*entity.Corpus, error)
}

func (m *mockCorpusRefresher) Refresh(ctx context.Context) (*entity.Corpus, error) {
	return m.RefreshFunc(ctx)
}

func TestCorpusHandler_Refresh(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		refresh        func(ctx context.Context) (*entity.Corpus, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: lists reference ids",
			refresh: func(ctx context.Context) (*entity.Corpus, error) {
				return entity.NewCorpus([]entity.Reference{
					{ID: "charizard_gx", Descriptors: make([]entity.Descriptor, 3)},
					{ID: "pikachu-vmax", Descriptors: make([]entity.Descriptor, 3)},
				}), nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"references":2,"ids":["charizard_gx","pikachu-vmax"]}`,
		},
		{
			name: "success: empty corpus",
			refresh: func(ctx context.Context) (*entity.Corpus, error) {
				return entity.NewCorpus(nil), nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"references":0,"ids":[]}`,
		},
		{
			name: "failure: refresh error",
			refresh: func(ctx context.Context) (*entity.Corpus, error) {
				return nil, errors.New("permission denied")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"corpus refresh failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handler.NewCorpusHandler(&mockCorpusRefresher{RefreshFunc: tt.refresh})
			router := gin.New()
			router.POST("/v1/corpus/refresh", h.Refresh)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/v1/corpus/refresh", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

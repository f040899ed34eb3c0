package di

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"cardlens/internal/config"
	catalogadapters "cardlens/internal/feature/catalog/adapters"
	catalogusecase "cardlens/internal/feature/catalog/usecase"
	"cardlens/internal/platform/metrics"
)

// NewCatalog はカタログのユースケースを生成し、CSVの内容をデータベースへ取り込みます。
// CSVが存在しない場合は既定のカード一覧で作成します。
func NewCatalog(ctx context.Context, cfg config.CatalogConfig, db *gorm.DB, m *metrics.Metrics) (*catalogusecase.CatalogUsecase, error) {
	uc := catalogusecase.NewCatalogUsecase(catalogadapters.NewCardRepository(db)).WithObserver(m)

	created, err := catalogadapters.EnsureCSV(cfg.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare catalog csv: %w", err)
	}
	if created {
		slog.Info("default catalog csv written", "file", cfg.CSVPath)
	}

	n, err := uc.Import(ctx, catalogadapters.NewCSVSource(cfg.CSVPath))
	if err != nil {
		return nil, fmt.Errorf("failed to import catalog: %w", err)
	}
	slog.Info("catalog imported", "file", cfg.CSVPath, "cards", n)
	return uc, nil
}

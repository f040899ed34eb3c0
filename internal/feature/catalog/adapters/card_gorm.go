// Package adapters はcatalogフィーチャーのリポジトリ実装とカードデータソースを提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cardlens/internal/feature/catalog/domain/entity"
	"cardlens/internal/feature/catalog/usecase"
)

// CardModel はcardsテーブルの行を表すGORMモデルです。
// カード名の一意性は大文字小文字を区別しないNameKey列で保証します。
type CardModel struct {
	ID          uint    `gorm:"primaryKey"`
	NameKey     string  `gorm:"size:255;not null;uniqueIndex"`
	Name        string  `gorm:"size:255;not null"`
	Series      string  `gorm:"size:255;not null;default:''"`
	BasePrice   float64 `gorm:"not null"`
	RarityScore int     `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName はテーブル名を返します。
func (CardModel) TableName() string {
	return "cards"
}

// cardGorm はCardRepositoryインターフェースのGORM実装です（SQLite / PostgreSQL）。
type cardGorm struct {
	db *gorm.DB
}

var _ usecase.CardRepository = (*cardGorm)(nil)

// NewCardRepository は指定されたDB接続でcardGormリポジトリの新しいインスタンスを生成します。
func NewCardRepository(db *gorm.DB) *cardGorm {
	return &cardGorm{db: db}
}

// ListAll は登録順（id昇順）ですべてのカードを返します。この順序がカタログ順になります。
func (r *cardGorm) ListAll(ctx context.Context) ([]entity.Card, error) {
	return listAll(r.db.WithContext(ctx))
}

func listAll(db *gorm.DB) ([]entity.Card, error) {
	var rows []CardModel
	if err := db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Card, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Card{
			Name:        m.Name,
			Series:      m.Series,
			BasePrice:   m.BasePrice,
			RarityScore: m.RarityScore,
		})
	}
	return out, nil
}

// UpsertBatch はカードを挿入し、同名（大文字小文字を区別しない）のカードが存在する場合は内容を更新します。
// 既存行のidは変わらないため、カタログ順は保たれます。
// checkがnilでなければ、書き込み後の全行を同じトランザクション内で渡し、エラーならロールバックします。
func (r *cardGorm) UpsertBatch(ctx context.Context, cards []entity.Card, check func(merged []entity.Card) error) error {
	if len(cards) == 0 {
		return nil
	}
	ms := make([]CardModel, 0, len(cards))
	for _, c := range cards {
		ms = append(ms, CardModel{
			NameKey:     entity.NameKey(c.Name),
			Name:        c.Name,
			Series:      c.Series,
			BasePrice:   c.BasePrice,
			RarityScore: c.RarityScore,
		})
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "series", "base_price", "rarity_score", "updated_at"}),
		}).Create(&ms).Error
		if err != nil {
			return err
		}
		if check == nil {
			return nil
		}
		merged, err := listAll(tx)
		if err != nil {
			return err
		}
		return check(merged)
	})
}

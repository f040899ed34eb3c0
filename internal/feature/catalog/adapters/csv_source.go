package adapters

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cardlens/internal/feature/catalog/domain/entity"
	"cardlens/internal/feature/catalog/usecase"
)

// CSVの列名です。
const (
	ColumnName        = "Card Name"
	ColumnSeries      = "Series"
	ColumnBasePrice   = "Base Price"
	ColumnRarityScore = "Rarity Score"
)

// CSVSource はヘッダー付きCSVファイルからカードを読み込むCardSourceです。
type CSVSource struct {
	Path string
}

var _ usecase.CardSource = CSVSource{}

// NewCSVSource はCSVSourceの新しいインスタンスを生成します。
func NewCSVSource(path string) CSVSource {
	return CSVSource{Path: path}
}

// Load はCSVファイルを読み込みます。列の並び順は問いません。
func (s CSVSource) Load(ctx context.Context) ([]entity.Card, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadCards(ctx, f)
}

// ReadCards はCSVストリームからカードを読み込みます。
func ReadCards(ctx context.Context, r io.Reader) ([]entity.Card, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var cards []entity.Card
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		card, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, want := range []string{ColumnName, ColumnSeries, ColumnBasePrice, ColumnRarityScore} {
			if strings.EqualFold(h, want) {
				idx[want] = i
			}
		}
	}
	for _, want := range []string{ColumnName, ColumnBasePrice, ColumnRarityScore} {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", want)
		}
	}
	return idx, nil
}

func parseRecord(rec []string, idx map[string]int) (entity.Card, error) {
	field := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	price, err := strconv.ParseFloat(field(ColumnBasePrice), 64)
	if err != nil {
		return entity.Card{}, fmt.Errorf("%w: base price %q", entity.ErrInvalidCard, field(ColumnBasePrice))
	}
	// 表計算ソフト経由のCSVでは "85.0" のように小数表記になることがある
	rarity, err := strconv.ParseFloat(field(ColumnRarityScore), 64)
	if err != nil || rarity != math.Trunc(rarity) {
		return entity.Card{}, fmt.Errorf("%w: rarity score %q", entity.ErrInvalidCard, field(ColumnRarityScore))
	}

	return entity.Card{
		Name:        field(ColumnName),
		Series:      field(ColumnSeries),
		BasePrice:   price,
		RarityScore: int(rarity),
	}, nil
}

// WriteCards はカードをヘッダー付きCSVとして書き出します。
func WriteCards(w io.Writer, cards []entity.Card) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnName, ColumnSeries, ColumnBasePrice, ColumnRarityScore}); err != nil {
		return err
	}
	for _, c := range cards {
		rec := []string{
			c.Name,
			c.Series,
			strconv.FormatFloat(c.BasePrice, 'f', -1, 64),
			strconv.Itoa(c.RarityScore),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EnsureCSV はpathにCSVが無ければDefaultCardsで作成します。作成した場合はtrueを返します。
func EnsureCSV(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCards(f, DefaultCards()); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("failed to write default catalog: %w", err)
	}
	return true, f.Close()
}

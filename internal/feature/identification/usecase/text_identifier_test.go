package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "cardlens/internal/feature/catalog/domain/entity"
	"cardlens/internal/feature/identification/domain/entity"
	"cardlens/internal/feature/identification/usecase"
)

// mockTextRecognizer はTextRecognizerインターフェースのモック実装です。
type mockTextRecognizer struct {
	RecognizeTextFunc func(ctx context.Context, png []byte, whitelist string) (string, error)
}

func (m *mockTextRecognizer) RecognizeText(ctx context.Context, png []byte, whitelist string) (string, error) {
	return m.RecognizeTextFunc(ctx, png, whitelist)
}

func mustCatalog(t *testing.T, names ...string) *catalog.Catalog {
	t.Helper()
	cards := make([]catalog.Card, 0, len(names))
	for _, n := range names {
		cards = append(cards, catalog.Card{Name: n, Series: "Test", BasePrice: 10, RarityScore: 50})
	}
	c, err := catalog.NewCatalog(cards)
	require.NoError(t, err)
	return c
}

func TestMatchText(t *testing.T) {
	t.Parallel()

	pokemon := []string{
		"Pikachu VMAX", "Charizard GX", "Mewtwo EX", "Blastoise V", "Venusaur GX",
		"Lucario VMAX", "Rayquaza VMAX", "Garchomp V", "Eevee VMAX", "Gengar VMAX",
	}

	tests := []struct {
		name      string
		names     []string
		text      string
		wantName  string
		wantScore int
	}{
		{"all words present", pokemon, "Pikachu VMAX 044 185", "Pikachu VMAX", 2},
		{"half of the words is enough", pokemon, "GENGAR hp 320", "Gengar VMAX", 1},
		{"words match as substrings", pokemon, "CharizardGX", "Charizard GX", 2},
		{"equal counts keep catalog order", pokemon, "vmax", "Pikachu VMAX", 1},
		{"more words beat an earlier entry", pokemon, "vmax rayquaza", "Rayquaza VMAX", 2},
		{"unique single word name", []string{"Mewtwo EX", "Mew"}, "MEW", "Mew", 1},
		{"no tokens present", pokemon, "bulbasaur", "", 0},
		{"below half of the words is rejected", []string{"Pikachu VMAX Rainbow Rare"}, "pikachu", "", 1},
		{"empty text", pokemon, "   ", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := usecase.MatchText(tt.text, mustCatalog(t, tt.names...))

			assert.Equal(t, tt.wantScore, res.Score)
			if tt.wantName == "" {
				assert.Equal(t, entity.StatusNoMatch, res.Status)
				assert.Nil(t, res.Card)
				return
			}
			assert.Equal(t, entity.StatusMatched, res.Status)
			assert.Equal(t, tt.wantName, res.CandidateID)
			require.NotNil(t, res.Card)
			assert.Equal(t, tt.wantName, res.Card.Name)
		})
	}
}

func TestMatchText_EmptyCatalog(t *testing.T) {
	t.Parallel()

	assert.Equal(t, entity.NoMatch(0), usecase.MatchText("pikachu", nil))
}

func TestTextIdentifier_Identify(t *testing.T) {
	t.Parallel()

	cat := mustCatalog(t, "Pikachu VMAX", "Charizard GX")
	ocrErr := errors.New("quota exceeded")

	tests := []struct {
		name       string
		image      []byte
		recognize  func(ctx context.Context, png []byte, whitelist string) (string, error)
		wantStatus entity.Status
		wantName   string
		wantErr    error
	}{
		{
			name:  "success: recognized card name",
			image: splitImage(t, 120, 60),
			recognize: func(ctx context.Context, png []byte, whitelist string) (string, error) {
				return "  Charizard GX\n", nil
			},
			wantStatus: entity.StatusMatched,
			wantName:   "Charizard GX",
		},
		{
			name:  "no text extracted is not an error",
			image: splitImage(t, 120, 60),
			recognize: func(ctx context.Context, png []byte, whitelist string) (string, error) {
				return "", nil
			},
			wantStatus: entity.StatusNoMatch,
		},
		{
			name:  "error: recognizer failure",
			image: splitImage(t, 120, 60),
			recognize: func(ctx context.Context, png []byte, whitelist string) (string, error) {
				return "", ocrErr
			},
			wantErr: ocrErr,
		},
		{
			name:    "error: undecodable image",
			image:   []byte("garbage"),
			wantErr: entity.ErrUndecodableImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ocr := &mockTextRecognizer{RecognizeTextFunc: func(ctx context.Context, data []byte, whitelist string) (string, error) {
				assert.Equal(t, usecase.OCRWhitelist, whitelist)
				cfg, err := png.DecodeConfig(bytes.NewReader(data))
				require.NoError(t, err)
				assert.Equal(t, usecase.DefaultMinOCRWidth, cfg.Width)
				return tt.recognize(ctx, data, whitelist)
			}}

			res, err := usecase.NewTextIdentifier(ocr, 0).Identify(context.Background(), tt.image, cat)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantName, res.CandidateID)
		})
	}
}

func TestKeepWhitelisted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Charizard-GX", "CharizardGX"},
		{"Pikachu\nVMAX", "Pikachu VMAX"},
		{"Pokémon 120 HP!", "Pokmon 120 HP"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, usecase.KeepWhitelisted(tt.in, usecase.OCRWhitelist))
	}
}

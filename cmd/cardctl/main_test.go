package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appraisal "cardlens/internal/feature/appraisal/domain/entity"
	catalog "cardlens/internal/feature/catalog/domain/entity"
	identification "cardlens/internal/feature/identification/domain/entity"
	pricing "cardlens/internal/feature/pricing/domain/entity"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPriceCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr string
	}{
		{
			name: "mint high rarity with base price",
			args: []string{"price", "--rarity", "95", "--condition", "mint", "--base-price", "120"},
			want: []string{"Condition:  Mint", "Multiplier: 1.50x (fuzzy)", "Estimate:   $180.00"},
		},
		{
			name: "multiplier only",
			args: []string{"price", "--rarity", "50"},
			want: []string{"Rarity:     50", "(fuzzy)"},
		},
		{
			name:    "rarity out of range",
			args:    []string{"price", "--rarity", "120"},
			wantErr: "--rarity: rarity score must be between 0 and 100",
		},
		{
			name:    "unknown condition",
			args:    []string{"price", "--rarity", "50", "--condition", "Graded"},
			wantErr: "Graded",
		},
		{
			name:    "rarity is required",
			args:    []string{"price"},
			wantErr: "rarity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("CARDLENS_AUTH_JWT_SECRET", "cli-secret")

	out, err := execute(t, "token", "--subject", "ops", "--ttl", "5m")
	require.NoError(t, err)

	tok, err := jwt.Parse(strings.TrimSpace(out), func(*jwt.Token) (any, error) { return []byte("cli-secret"), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "ops", claims["sub"])
	assert.Equal(t, "admin", claims["scope"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp.Time, 5*time.Second)
}

func TestTokenCmd_MissingSecret(t *testing.T) {
	_, err := execute(t, "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestIdentifyCmd_InvalidFlags(t *testing.T) {
	_, err := execute(t, "identify", "card.png", "--strategy", "sift")
	assert.ErrorIs(t, err, identification.ErrUnknownStrategy)

	_, err = execute(t, "identify")
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	card := &catalog.Card{Name: "Charizard GX", Series: "Sun & Moon", BasePrice: 120, RarityScore: 95}
	tests := []struct {
		name string
		a    *appraisal.Appraisal
		want string
	}{
		{
			name: "priced",
			a: &appraisal.Appraisal{
				Status: appraisal.StatusPriced, Condition: pricing.ConditionMint, Score: 42, Card: card,
				Estimate: &pricing.PriceEstimate{Multiplier: 1.5, EstimatedPrice: 180, Method: pricing.MethodFuzzy},
			},
			want: "Identified: Charizard GX\nSeries:     Sun & Moon\nBase price: $120.00\n" +
				"Condition:  Mint (1.50x, fuzzy)\nEstimate:   $180.00\nConfidence: 42\n",
		},
		{
			name: "unidentified with threshold",
			a:    &appraisal.Appraisal{Status: appraisal.StatusUnidentified, Score: 7, Threshold: 10},
			want: "Card not identified (best score: 7, threshold: 10)\n",
		},
		{
			name: "unidentified by text",
			a:    &appraisal.Appraisal{Status: appraisal.StatusUnidentified, Score: 1},
			want: "Card not identified (best score: 1)\n",
		},
		{
			name: "matched unknown",
			a:    &appraisal.Appraisal{Status: appraisal.StatusMatchedUnknown, CandidateID: "mew_ex", Score: 30},
			want: "Matched \"mew_ex\" but it is not in the catalog (confidence: 30)\n",
		},
		{
			name: "no corpus",
			a:    &appraisal.Appraisal{Status: appraisal.StatusNoCorpus},
			want: "No reference images available for matching\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			writeReport(&buf, tt.a)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

package usecase_test

import (
	"context"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "cardlens/internal/feature/catalog/domain/entity"
	"cardlens/internal/feature/identification/domain/entity"
	"cardlens/internal/feature/identification/usecase"
)

// randomDescriptors はseedから決定的に生成したn個の記述子を返します。
func randomDescriptors(seed uint64, n int) []entity.Descriptor {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]entity.Descriptor, n)
	for i := range out {
		for j := 0; j < entity.DescriptorSize; j += 8 {
			binary.LittleEndian.PutUint64(out[i][j:], r.Uint64())
		}
	}
	return out
}

// mockExtractor はDescriptorExtractorインターフェースのモック実装です。
type mockExtractor struct {
	ExtractFunc func(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error)
}

func (m *mockExtractor) Extract(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error) {
	return m.ExtractFunc(ctx, image, maxFeatures)
}

// mockCorpusProvider はCorpusProviderインターフェースのモック実装です。
type mockCorpusProvider struct {
	corpus *entity.Corpus
	err    error
	calls  int
}

func (m *mockCorpusProvider) Current(ctx context.Context) (*entity.Corpus, error) {
	m.calls++
	return m.corpus, m.err
}

func newMatcher(corpus *entity.Corpus) *usecase.DescriptorMatcher {
	return usecase.NewDescriptorMatcher(nil, &mockCorpusProvider{corpus: corpus}, usecase.DefaultMatcherConfig())
}

func TestGoodMatches(t *testing.T) {
	t.Parallel()

	ds := randomDescriptors(1, 50)
	other := randomDescriptors(2, 50)

	tests := []struct {
		name  string
		query []entity.Descriptor
		ref   []entity.Descriptor
		want  int
	}{
		{"identical sets match every descriptor", ds, ds, 50},
		{"unrelated sets have no good matches", ds, other, 0},
		{"reference with one descriptor cannot form two neighbours", ds[:1], ds[:1], 0},
		{"empty reference", ds, nil, 0},
		{"duplicated nearest neighbour is ambiguous", ds[:1], []entity.Descriptor{ds[0], ds[0]}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, usecase.GoodMatches(tt.query, tt.ref, usecase.DefaultRatio))
		})
	}
}

func TestDescriptorMatcher_Match(t *testing.T) {
	t.Parallel()

	card := randomDescriptors(10, 40)
	noise := randomDescriptors(11, 40)

	tests := []struct {
		name   string
		query  []entity.Descriptor
		corpus *entity.Corpus
		want   entity.MatchResult
	}{
		{
			name:   "identical image is accepted with the maximum score",
			query:  card,
			corpus: entity.NewCorpus([]entity.Reference{{ID: "noise", Descriptors: noise}, {ID: "charizard_gx", Descriptors: card}}),
			want:   entity.MatchResult{Status: entity.StatusMatched, CandidateID: "charizard_gx", Score: 40},
		},
		{
			name:   "zero query descriptors is no match regardless of corpus",
			query:  nil,
			corpus: entity.NewCorpus([]entity.Reference{{ID: "charizard_gx", Descriptors: card}}),
			want:   entity.MatchResult{Status: entity.StatusNoMatch, Score: 0},
		},
		{
			name:   "zero query descriptors with no corpus is still no match",
			query:  nil,
			corpus: nil,
			want:   entity.MatchResult{Status: entity.StatusNoMatch, Score: 0},
		},
		{
			name:   "nil corpus",
			query:  card,
			corpus: nil,
			want:   entity.MatchResult{Status: entity.StatusNoCorpus},
		},
		{
			name:   "empty corpus",
			query:  card,
			corpus: entity.NewCorpus(nil),
			want:   entity.MatchResult{Status: entity.StatusNoCorpus},
		},
		{
			name:   "ties keep the first reference in corpus order",
			query:  card,
			corpus: entity.NewCorpus([]entity.Reference{{ID: "first", Descriptors: card}, {ID: "second", Descriptors: card}}),
			want:   entity.MatchResult{Status: entity.StatusMatched, CandidateID: "first", Score: 40},
		},
		{
			name:   "score equal to threshold is rejected but reported",
			query:  card[:10],
			corpus: entity.NewCorpus([]entity.Reference{{ID: "charizard_gx", Descriptors: card[:10]}}),
			want:   entity.MatchResult{Status: entity.StatusNoMatch, Score: 10},
		},
		{
			name:   "score just above threshold is accepted",
			query:  card[:11],
			corpus: entity.NewCorpus([]entity.Reference{{ID: "charizard_gx", Descriptors: card[:11]}}),
			want:   entity.MatchResult{Status: entity.StatusMatched, CandidateID: "charizard_gx", Score: 11},
		},
		{
			name:   "unrelated corpus is no match",
			query:  card,
			corpus: entity.NewCorpus([]entity.Reference{{ID: "noise", Descriptors: noise}}),
			want:   entity.MatchResult{Status: entity.StatusNoMatch, Score: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, newMatcher(tt.corpus).Match(tt.query, tt.corpus))
		})
	}
}

// TestDescriptorMatcher_Match_DeterministicAcrossWorkers は並列度によらず同じ結果になることを検証します。
func TestDescriptorMatcher_Match_DeterministicAcrossWorkers(t *testing.T) {
	t.Parallel()

	query := randomDescriptors(20, 30)
	refs := make([]entity.Reference, 0, 12)
	for i := range 12 {
		ds := randomDescriptors(uint64(100+i), 30)
		if i%4 == 1 {
			ds = append(ds[:i], query[i:]...)
		}
		refs = append(refs, entity.Reference{ID: string(rune('a' + i)), Descriptors: ds})
	}
	corpus := entity.NewCorpus(refs)

	serial := usecase.NewDescriptorMatcher(nil, nil, usecase.MatcherConfig{Workers: 1})
	parallel := usecase.NewDescriptorMatcher(nil, nil, usecase.MatcherConfig{Workers: 8})

	want := serial.Match(query, corpus)
	require.Equal(t, entity.StatusMatched, want.Status)
	assert.Equal(t, "b", want.CandidateID)
	for range 5 {
		assert.Equal(t, want, parallel.Match(query, corpus))
	}
}

func TestDescriptorMatcher_Identify(t *testing.T) {
	t.Parallel()

	card := randomDescriptors(30, 25)
	corpus := entity.NewCorpus([]entity.Reference{{ID: "pikachu_vmax", Descriptors: card}})
	extractErr := errors.New("decoder crashed")
	corpusErr := errors.New("directory unreadable")

	tests := []struct {
		name            string
		extract         func(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error)
		provider        *mockCorpusProvider
		want            entity.MatchResult
		wantErr         error
		wantCorpusCalls int
	}{
		{
			name: "success: matched",
			extract: func(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error) {
				return card, nil
			},
			provider:        &mockCorpusProvider{corpus: corpus},
			want:            entity.MatchResult{Status: entity.StatusMatched, CandidateID: "pikachu_vmax", Score: 25},
			wantCorpusCalls: 1,
		},
		{
			name: "no descriptors skips the corpus",
			extract: func(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error) {
				return nil, nil
			},
			provider: &mockCorpusProvider{err: corpusErr},
			want:     entity.MatchResult{Status: entity.StatusNoMatch},
		},
		{
			name: "error: extractor failure",
			extract: func(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error) {
				return nil, extractErr
			},
			provider: &mockCorpusProvider{corpus: corpus},
			wantErr:  extractErr,
		},
		{
			name: "error: corpus failure",
			extract: func(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error) {
				return card, nil
			},
			provider:        &mockCorpusProvider{err: corpusErr},
			wantErr:         corpusErr,
			wantCorpusCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotMax int
			ex := &mockExtractor{ExtractFunc: func(ctx context.Context, image []byte, maxFeatures int) ([]entity.Descriptor, error) {
				gotMax = maxFeatures
				return tt.extract(ctx, image, maxFeatures)
			}}
			m := usecase.NewDescriptorMatcher(ex, tt.provider, usecase.DefaultMatcherConfig())

			res, err := m.Identify(context.Background(), []byte("img"), (*catalog.Catalog)(nil))

			assert.Equal(t, usecase.DefaultMaxFeatures, gotMax)
			assert.Equal(t, tt.wantCorpusCalls, tt.provider.calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestDescriptor_Distance(t *testing.T) {
	t.Parallel()

	var a, b entity.Descriptor
	assert.Equal(t, 0, a.Distance(b))

	b[0] = 0xff
	b[31] = 0x01
	assert.Equal(t, 9, a.Distance(b))
	assert.Equal(t, 9, b.Distance(a))

	for i := range b {
		b[i] = 0xff
	}
	assert.Equal(t, 256, a.Distance(b))
}

func TestDescriptorsBytesRoundTrip(t *testing.T) {
	t.Parallel()

	ds := randomDescriptors(40, 3)
	raw := entity.DescriptorsToBytes(ds)
	require.Len(t, raw, 3*entity.DescriptorSize)
	assert.Equal(t, ds, entity.DescriptorsFromBytes(append(raw, 0x01)))
}

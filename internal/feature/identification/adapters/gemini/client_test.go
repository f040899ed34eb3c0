package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"cardlens/internal/feature/identification/usecase"
)

// fakeGenerator はcontentGeneratorのテスト用実装です。
type fakeGenerator struct {
	text      string
	err       error
	gotModel  string
	gotParts  []*genai.Part
	gotConfig *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotParts = contents[0].Parts
	f.gotConfig = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

func TestGeminiTextRecognizer_RecognizeText(t *testing.T) {
	t.Parallel()

	fake := &fakeGenerator{text: "Pikachu VMAX\n044/185 ★"}
	r := &GeminiTextRecognizer{models: fake, model: DefaultModel}

	got, err := r.RecognizeText(context.Background(), []byte("png-bytes"), usecase.OCRWhitelist)
	require.NoError(t, err)

	assert.Equal(t, "Pikachu VMAX 044185", got)
	assert.Equal(t, DefaultModel, fake.gotModel)
	require.Len(t, fake.gotParts, 2)
	require.NotNil(t, fake.gotParts[0].InlineData)
	assert.Equal(t, []byte("png-bytes"), fake.gotParts[0].InlineData.Data)
	assert.Equal(t, "image/png", fake.gotParts[0].InlineData.MIMEType)
	assert.Contains(t, fake.gotParts[1].Text, "A-Z, a-z and 0-9")
	assert.Equal(t, float32(0), *fake.gotConfig.Temperature)
}

func TestGeminiTextRecognizer_RecognizeText_Error(t *testing.T) {
	t.Parallel()

	apiErr := errors.New("resource exhausted")
	r := &GeminiTextRecognizer{models: &fakeGenerator{err: apiErr}, model: DefaultModel}

	_, err := r.RecognizeText(context.Background(), []byte("png-bytes"), usecase.OCRWhitelist)
	assert.ErrorIs(t, err, apiErr)
}

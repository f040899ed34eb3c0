package vision

import (
	"context"
	"errors"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"

	"cardlens/internal/feature/identification/usecase"
)

// fakeAnnotator はimageAnnotatorのテスト用実装です。
type fakeAnnotator struct {
	resp   *visionpb.BatchAnnotateImagesResponse
	err    error
	gotReq *visionpb.BatchAnnotateImagesRequest
}

func (f *fakeAnnotator) BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func (f *fakeAnnotator) Close() error { return nil }

func TestVisionTextRecognizer_RecognizeText(t *testing.T) {
	t.Parallel()

	apiErr := errors.New("permission denied")

	tests := []struct {
		name    string
		resp    *visionpb.BatchAnnotateImagesResponse
		err     error
		want    string
		wantErr bool
	}{
		{
			name: "success: full text annotation is filtered",
			resp: &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
				TextAnnotations: []*visionpb.EntityAnnotation{
					{Description: "Charizard-GX\nHP 250\n"},
					{Description: "Charizard-GX"},
				},
			}}},
			want: "CharizardGX HP 250",
		},
		{
			name: "success: no text found",
			resp: &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{}}},
			want: "",
		},
		{
			name: "success: empty response",
			resp: &visionpb.BatchAnnotateImagesResponse{},
			want: "",
		},
		{
			name: "error: per-image error",
			resp: &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
				Error: &status.Status{Message: "bad image"},
			}}},
			wantErr: true,
		},
		{
			name:    "error: request failed",
			err:     apiErr,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeAnnotator{resp: tt.resp, err: tt.err}
			r := &VisionTextRecognizer{client: fake}

			got, err := r.RecognizeText(context.Background(), []byte("png"), usecase.OCRWhitelist)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.Len(t, fake.gotReq.Requests, 1)
			assert.Equal(t, []byte("png"), fake.gotReq.Requests[0].Image.Content)
			assert.Equal(t, visionpb.Feature_TEXT_DETECTION, fake.gotReq.Requests[0].Features[0].Type)
		})
	}
}

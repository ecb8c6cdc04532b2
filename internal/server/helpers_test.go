package server

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MeKo-Tech/barscan/internal/pipeline"
	"github.com/stretchr/testify/require"
)

// fakeScanner returns canned results and remembers what it was asked.
type fakeScanner struct {
	result *pipeline.ScanResult
	err    error
	calls  int
}

func (f *fakeScanner) ScanImage(_ context.Context, img image.Image) (*pipeline.ScanResult, error) {
	f.calls++
	if img == nil {
		return nil, pipeline.ErrInvalidInput
	}
	return f.result, f.err
}

func (f *fakeScanner) ScanParallel(ctx context.Context, sources []pipeline.Source) ([]pipeline.ItemResult, error) {
	out := make([]pipeline.ItemResult, len(sources))
	for i, src := range sources {
		out[i].Index = i
		img, err := src()
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i].Result, out[i].Err = f.ScanImage(ctx, img)
	}
	return out, nil
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// newMultipartRequest builds a POST with data in the given form field.
func newMultipartRequest(t *testing.T, url, field, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

package utils

import (
	"errors"
	"image"
	"testing"

	"github.com/MeKo-Tech/barscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageProcessingError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ImageProcessingError{Operation: "decode", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "decode")
}

func TestValidateImageConstraints(t *testing.T) {
	c := DefaultImageConstraints()
	require.NoError(t, ValidateImageConstraints(testutil.Uniform(100, 100, 0), c))
	require.Error(t, ValidateImageConstraints(testutil.Uniform(8, 100, 0), c))
	require.Error(t, ValidateImageConstraints(nil, c))
}

func TestLimitSize(t *testing.T) {
	img := testutil.Uniform(4000, 1000, 50)
	out := LimitSize(img, 2000)
	assert.Equal(t, image.Rect(0, 0, 2000, 500), out.Bounds())

	small := testutil.Uniform(300, 200, 50)
	assert.Same(t, small, LimitSize(small, 2000))
	assert.Same(t, img, LimitSize(img, 0))
}

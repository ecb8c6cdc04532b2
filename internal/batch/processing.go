package batch

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/barscan/internal/pipeline"
	"github.com/MeKo-Tech/barscan/internal/utils"
)

// loadAndValidateImage loads an image and checks it against the minimum size.
func loadAndValidateImage(path string) (image.Image, error) {
	img, meta, err := utils.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := utils.ValidateImageConstraints(img, utils.DefaultImageConstraints()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Loaded image", "file", path, "format", meta.Format, "width", meta.Width, "height", meta.Height)
	return img, nil
}

// fileSources turns paths into lazy pipeline sources.
func fileSources(paths []string) []pipeline.Source {
	sources := make([]pipeline.Source, len(paths))
	for i, path := range paths {
		sources[i] = func() (image.Image, error) { return loadAndValidateImage(path) }
	}
	return sources
}

// Package preprocess turns a decoded photo into the two grayscale frames the
// scanner consumes: the plain luma image and a locally contrast-equalized copy.
package preprocess

import (
	"errors"
	"image"

	"github.com/MeKo-Tech/barscan/internal/imgproc"
)

// Config controls the enhancement pass.
type Config struct {
	ClipLimit float64 `mapstructure:"clip_limit" yaml:"clip_limit" json:"clip_limit"`
	TileGrid  int     `mapstructure:"tile_grid" yaml:"tile_grid" json:"tile_grid"`
}

// DefaultConfig returns CLAHE with clip limit 2.0 over an 8x8 grid.
func DefaultConfig() Config {
	return Config{ClipLimit: 2.0, TileGrid: 8}
}

// Frames holds the scanner inputs derived from one photo.
type Frames struct {
	Original *image.Gray
	Enhanced *image.Gray
}

// Prepare converts img to grayscale and builds the enhanced frame.
func Prepare(img image.Image, cfg Config) (Frames, error) {
	if img == nil || img.Bounds().Empty() {
		return Frames{}, errors.New("preprocess: empty image")
	}
	gray := imgproc.ToGray(img)
	return Frames{
		Original: gray,
		Enhanced: imgproc.CLAHE(gray, cfg.ClipLimit, cfg.TileGrid),
	}, nil
}

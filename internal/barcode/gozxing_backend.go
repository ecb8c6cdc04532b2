package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

type gozxingBackend struct{}

func (b *gozxingBackend) Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	if img == nil {
		return nil, errors.New("barcode: nil image")
	}
	if img.Bounds().Empty() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hints := buildHints(opts)

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("barcode: binarize: %w", err)
	}

	reader := oned.NewMultiFormatUPCEANReader(hints)
	r, err := reader.Decode(bmp, hints)
	if err != nil {
		var notFound gozxing.NotFoundException
		var checksum gozxing.ChecksumException
		var format gozxing.FormatException
		if errors.As(err, &notFound) || errors.As(err, &checksum) || errors.As(err, &format) {
			return nil, nil
		}
		return nil, err
	}
	return normalizeResult(r, opts.Formats), nil
}

func buildHints(opts Options) map[gozxing.DecodeHintType]interface{} {
	hints := make(map[gozxing.DecodeHintType]interface{})
	formats := opts.Formats
	if len(formats) == 0 {
		formats = RetailFormats
	}
	var zx []gozxing.BarcodeFormat
	for _, f := range formats {
		if bf, ok := mapFormatToZXing(f); ok {
			zx = append(zx, bf)
		}
	}
	if len(zx) > 0 {
		hints[gozxing.DecodeHintType_POSSIBLE_FORMATS] = zx
	}
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	return hints
}

// normalizeResult splits a gozxing result into the primary symbol and, when the
// reader found one, the add-on it stored in the result metadata.
func normalizeResult(r *gozxing.Result, allowed []Format) []Result {
	if r == nil {
		return nil
	}
	out := make([]Result, 0, 2)
	out = append(out, Result{Type: mapFormatFromZXing(r.GetBarcodeFormat()), Value: r.GetText()})

	if !formatAllowed(FormatEAN5, allowed) {
		return out
	}
	if ext, ok := r.GetResultMetadata()[gozxing.ResultMetadataType_UPC_EAN_EXTENSION]; ok {
		if s, ok := ext.(string); ok && len(s) == 5 {
			out = append(out, Result{Type: FormatEAN5, Value: s})
		}
	}
	return out
}

func formatAllowed(f Format, allowed []Format) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == f {
			return true
		}
	}
	return false
}

func mapFormatToZXing(f Format) (gozxing.BarcodeFormat, bool) {
	switch f {
	case FormatEAN13:
		return gozxing.BarcodeFormat_EAN_13, true
	case FormatUPCA:
		return gozxing.BarcodeFormat_UPC_A, true
	case FormatUPCE:
		return gozxing.BarcodeFormat_UPC_E, true
	case FormatEAN5:
		return gozxing.BarcodeFormat_UPC_EAN_EXTENSION, true
	default:
		return 0, false
	}
}

func mapFormatFromZXing(bf gozxing.BarcodeFormat) Format {
	switch bf {
	case gozxing.BarcodeFormat_EAN_13:
		return FormatEAN13
	case gozxing.BarcodeFormat_UPC_A:
		return FormatUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return FormatUPCE
	case gozxing.BarcodeFormat_UPC_EAN_EXTENSION:
		return FormatEAN5
	default:
		return FormatUnknown
	}
}

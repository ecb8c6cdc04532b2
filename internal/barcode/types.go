package barcode

import (
	"context"
	"image"
	"strings"
)

// Format represents a barcode symbology.
type Format int

const (
	FormatUnknown Format = iota
	FormatUPCA
	FormatUPCE
	FormatEAN13
	FormatEAN5
)

// RetailFormats is the symbology set every decode attempt is restricted to.
var RetailFormats = []Format{FormatUPCA, FormatUPCE, FormatEAN13, FormatEAN5}

// String returns the lowercase symbology name.
func (f Format) String() string {
	switch f {
	case FormatUPCA:
		return "upc_a"
	case FormatUPCE:
		return "upc_e"
	case FormatEAN13:
		return "ean_13"
	case FormatEAN5:
		return "ean_5"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// ParseFormat maps a symbology name back to a Format.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "upc_a", "upca":
		return FormatUPCA
	case "upc_e", "upce":
		return FormatUPCE
	case "ean_13", "ean13":
		return FormatEAN13
	case "ean_5", "ean5":
		return FormatEAN5
	default:
		return FormatUnknown
	}
}

// IsPrimary reports whether the symbology carries a product code (as opposed to an add-on).
func (f Format) IsPrimary() bool {
	return f == FormatUPCA || f == FormatUPCE || f == FormatEAN13
}

// Options controls backend decoding behavior.
type Options struct {
	// Formats constrains the set of symbologies to search.
	Formats []Format

	// TryHarder enables more exhaustive row scanning (slower but more robust).
	TryHarder bool
}

// Result represents one decoded symbol.
type Result struct {
	Type  Format
	Value string
}

// Backend is a pluggable barcode decoder implementation.
//
// An image with no readable symbol yields an empty slice and a nil error.
type Backend interface {
	Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error)
}

// NewBackend returns the default gozxing backend.
func NewBackend() (Backend, error) { return &gozxingBackend{}, nil }

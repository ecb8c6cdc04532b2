// Package barcode wraps a symbol decoder behind a small interface.
//
// The default backend is built on github.com/makiuchi-d/gozxing and reads the
// retail linear symbologies (UPC-A, UPC-E, EAN-13) together with an optional
// EAN-5 add-on that is reported as its own Result. Decoders are stateless and
// safe for concurrent use; callers own the images they pass in.
package barcode

package pipeline

import "github.com/MeKo-Tech/barscan/internal/barcode"

// aggregator classifies decoder hits into the main symbol and the add-on.
// The first value seen for each slot wins.
type aggregator struct {
	main      string
	format    barcode.Format
	extension string
}

// add records hits and reports whether a main symbol is now known.
func (a *aggregator) add(hits []barcode.Result) bool {
	for _, h := range hits {
		switch {
		case h.Type.IsPrimary():
			if a.main == "" && h.Value != "" {
				a.main = h.Value
				a.format = h.Type
			}
		case h.Type == barcode.FormatEAN5:
			if a.extension == "" && h.Value != "" {
				a.extension = h.Value
			}
		}
	}
	return a.main != ""
}

// fill copies the recognized symbols and their origin into r.
func (a *aggregator) fill(r *ScanResult, c Candidate) {
	r.Main = a.main
	r.Symbology = a.format
	r.Extension = a.extension
	r.Tier = c.Tier
	r.Transform = c.Transform
}

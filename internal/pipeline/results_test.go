package pipeline

import (
	"testing"

	"github.com/MeKo-Tech/barscan/internal/barcode"
	"github.com/stretchr/testify/assert"
)

func TestAggregator(t *testing.T) {
	tests := []struct {
		name      string
		batches   [][]barcode.Result
		wantFound bool
		wantMain  string
		wantExt   string
		wantType  barcode.Format
	}{
		{
			name:    "nothing",
			batches: [][]barcode.Result{nil, {}},
		},
		{
			name:      "main and add-on in one call",
			batches:   [][]barcode.Result{{{Type: barcode.FormatUPCA, Value: "036000291452"}, {Type: barcode.FormatEAN5, Value: "52495"}}},
			wantFound: true, wantMain: "036000291452", wantExt: "52495", wantType: barcode.FormatUPCA,
		},
		{
			name:      "add-on before main",
			batches:   [][]barcode.Result{{{Type: barcode.FormatEAN5, Value: "52495"}}, {{Type: barcode.FormatEAN13, Value: "4006381333931"}}},
			wantFound: true, wantMain: "4006381333931", wantExt: "52495", wantType: barcode.FormatEAN13,
		},
		{
			name:    "add-on only",
			batches: [][]barcode.Result{{{Type: barcode.FormatEAN5, Value: "52495"}}},
			wantExt: "52495",
		},
		{
			name:      "first main wins",
			batches:   [][]barcode.Result{{{Type: barcode.FormatUPCE, Value: "01234565"}, {Type: barcode.FormatEAN13, Value: "4006381333931"}}},
			wantFound: true, wantMain: "01234565", wantType: barcode.FormatUPCE,
		},
		{
			name:    "empty values are ignored",
			batches: [][]barcode.Result{{{Type: barcode.FormatEAN13}, {Type: barcode.FormatUnknown, Value: "x"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a aggregator
			found := false
			for _, b := range tt.batches {
				found = a.add(b)
			}
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantMain, a.main)
			assert.Equal(t, tt.wantExt, a.extension)
			assert.Equal(t, tt.wantType, a.format)
		})
	}
}

func TestAggregatorFill(t *testing.T) {
	var a aggregator
	a.add([]barcode.Result{{Type: barcode.FormatEAN13, Value: "4006381333931"}})

	r := &ScanResult{Attempts: 7}
	a.fill(r, Candidate{Tier: TierDeep, Transform: "rot90/otsu"})
	assert.Equal(t, ScanResult{
		Main:      "4006381333931",
		Symbology: barcode.FormatEAN13,
		Tier:      TierDeep,
		Transform: "rot90/otsu",
		Attempts:  7,
	}, *r)
	assert.True(t, r.Found())
}

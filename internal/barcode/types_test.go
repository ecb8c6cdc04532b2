package barcode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_Names(t *testing.T) {
	cases := map[Format]string{
		FormatUPCA:    "upc_a",
		FormatUPCE:    "upc_e",
		FormatEAN13:   "ean_13",
		FormatEAN5:    "ean_5",
		FormatUnknown: "unknown",
	}
	for f, name := range cases {
		assert.Equal(t, name, f.String())
		assert.Equal(t, f, ParseFormat(name))
	}
	assert.Equal(t, FormatEAN13, ParseFormat("EAN-13"))
}

func TestFormat_IsPrimary(t *testing.T) {
	assert.True(t, FormatUPCA.IsPrimary())
	assert.True(t, FormatUPCE.IsPrimary())
	assert.True(t, FormatEAN13.IsPrimary())
	assert.False(t, FormatEAN5.IsPrimary())
	assert.False(t, FormatUnknown.IsPrimary())
}

func TestFormat_JSON(t *testing.T) {
	data, err := json.Marshal(Result{Type: FormatUPCE, Value: "01234565"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Type":"upc_e","Value":"01234565"}`, string(data))
}

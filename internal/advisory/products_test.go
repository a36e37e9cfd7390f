package advisory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProducts(t *testing.T) {
	got, err := ParseProducts([]byte(`["FortiOS", " FortiGate ", "", "FortiOS", "FortiClientEMS"]`))
	require.NoError(t, err)
	assert.Equal(t, Products{"FortiOS", "FortiGate", "FortiClientEMS"}, got)

	_, err = ParseProducts([]byte(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestLoadProducts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`["FortiOS","FortiProxy"]`), 0o644))

	got, err := LoadProducts(path)
	require.NoError(t, err)
	assert.Equal(t, Products{"FortiOS", "FortiProxy"}, got)

	_, err = LoadProducts(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProductsSearch(t *testing.T) {
	products := Products{"FortiOS", "FortiOS-6K7K", "FortiClientEMS", "FortiProxy", "MyFortiOS"}

	tests := []struct {
		name  string
		q     string
		limit int
		want  Products
	}{
		{name: "empty query returns all", q: "", want: products},
		{name: "empty query honours limit", q: "", limit: 2, want: Products{"FortiOS", "FortiOS-6K7K"}},
		{name: "prefix before infix", q: "fortios", want: Products{"FortiOS", "FortiOS-6K7K", "MyFortiOS"}},
		{name: "case insensitive infix", q: "PROXY", want: Products{"FortiProxy"}},
		{name: "limit", q: "forti", limit: 1, want: Products{"FortiOS"}},
		{name: "no match", q: "cisco", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := products.Search(tt.q, tt.limit)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

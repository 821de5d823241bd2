package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	assert.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	assert.False(t, ok, "adding to MaxInt must overflow")

	_, ok = AddOverflowSafe(math.MinInt, -1)
	assert.False(t, ok, "subtracting from MinInt must underflow")
}

func TestMulOverflowSafe(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want int
		ok   bool
	}{
		{"zero count", 0, 100, 0, true},
		{"zero size", 100, 0, 0, true},
		{"small", 100, 2, 200, true},
		{"overflow", math.MaxInt/2 + 1, 2, 0, false},
		{"negative", -1, 2, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MulOverflowSafe(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckRange(t *testing.T) {
	end, err := CheckRange(16, 4, 8)
	require.NoError(t, err)
	assert.Equal(t, 12, end)

	_, err = CheckRange(16, 12, 8)
	require.Error(t, err)

	_, err = CheckRange(16, -1, 1)
	require.Error(t, err)

	_, err = CheckRange(16, 1, -1)
	require.Error(t, err)

	_, err = CheckRange(16, math.MaxInt, 1)
	require.Error(t, err)
}

func TestHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}

	assert.True(t, Has(data, 1, 3))
	assert.False(t, Has(data, 4, 2), "range past len must fail")
	assert.False(t, Has(data, -1, 1))
	assert.False(t, Has(data, 2, 4))
	assert.True(t, Has(data, 2, 1))
	assert.True(t, Has(data, 5, 0), "empty slice at len is in bounds")
}

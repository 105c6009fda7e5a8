package valueutil

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromWei(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wei      string
		expected string
	}{
		{"0", "0"},
		{"1", "0.000000000000000001"},
		{"1000000000000000000", "1"},
		{"1500000000000000000", "1.5"},
		{"12345000000000000000000", "12345"},
	}
	for _, tt := range tests {
		wei, ok := new(big.Int).SetString(tt.wei, 10)
		require.True(t, ok)
		require.Equal(t, tt.expected, FromWei(wei))
	}

	require.Equal(t, "0", FromWei(nil))
}

func TestToWei(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "0"},
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"},
		{"12345", "12345000000000000000000"},
	}
	for _, tt := range tests {
		wei, err := ToWei(tt.amount)
		require.NoError(t, err)
		require.Equal(t, tt.expected, wei.String())
	}
}

func TestToWeiRejectsMalformedAmounts(t *testing.T) {
	t.Parallel()

	for _, amount := range []string{
		"",
		"abc",
		"1.2.3",
		// 19 fractional digits would silently lose precision.
		"0.0000000000000000001",
	} {
		_, err := ToWei(amount)
		require.Error(t, err, "amount %q", amount)
	}
}

func TestRoundTripIsExact(t *testing.T) {
	t.Parallel()

	for _, amount := range []string{"1", "0.1", "1.000000000000000001", "999999.999999999999999999"} {
		wei, err := ToWei(amount)
		require.NoError(t, err)
		back, err := ToWei(FromWei(wei))
		require.NoError(t, err)
		require.Zero(t, wei.Cmp(back))
	}
}

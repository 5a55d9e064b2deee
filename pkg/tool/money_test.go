package tool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCentsToAmount(t *testing.T) {
	require.Equal(t, "10.50", CentsToAmount(1050))
	require.Equal(t, "0.05", CentsToAmount(5))
	require.Equal(t, "100.00", CentsToAmount(10000))
}

func TestAmountToCents(t *testing.T) {
	cents, err := AmountToCents("10.50")
	require.NoError(t, err)
	require.Equal(t, int64(1050), cents)

	cents, err = AmountToCents("25")
	require.NoError(t, err)
	require.Equal(t, int64(2500), cents)

	_, err = AmountToCents("not-a-number")
	require.Error(t, err)
}

func TestAmountRoundTrip(t *testing.T) {
	cents, err := AmountToCents(CentsToAmount(999))
	require.NoError(t, err)
	require.Equal(t, int64(999), cents)
}

package mathutil_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocksim-network/stocksim-daemon/pkg/mathutil"
)

func TestRounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		value        string
		expectedUp   string
		expectedDown string
		expectedNear string
	}{
		{"exact", "10.25", "10.25", "10.25", "10.25"},
		{"just_above", "10.251", "10.26", "10.25", "10.25"},
		{"just_below", "10.249", "10.25", "10.24", "10.25"},
		{"half_cent", "10.255", "10.26", "10.25", "10.26"},
		{"tiny", "0.001", "0.01", "0", "0"},
		{"integral", "7", "7", "7", "7"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := decimal.RequireFromString(tt.value)
			require.True(
				t, mathutil.RoundUp(v, 2).Equal(decimal.RequireFromString(tt.expectedUp)),
			)
			require.True(
				t, mathutil.RoundDown(v, 2).Equal(decimal.RequireFromString(tt.expectedDown)),
			)
			require.True(
				t, mathutil.RoundNearest(v, 2).Equal(decimal.RequireFromString(tt.expectedNear)),
			)
		})
	}
}

func TestRoundUpNeverBelowRoundDown(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"0.004999", "1.005", "3.14159", "99.999"} {
		v := decimal.RequireFromString(raw)
		up := mathutil.RoundUp(v, 2)
		down := mathutil.RoundDown(v, 2)
		require.True(t, up.GreaterThanOrEqual(down))
		require.True(t, up.Sub(down).LessThanOrEqual(decimal.RequireFromString("0.01")))
	}
}

func TestMax(t *testing.T) {
	t.Parallel()

	one := decimal.NewFromInt(1)
	two := decimal.NewFromInt(2)
	require.True(t, mathutil.Max(one, two).Equal(two))
	require.True(t, mathutil.Max(two, one).Equal(two))
	require.True(t, mathutil.Max(two, two).Equal(two))
}

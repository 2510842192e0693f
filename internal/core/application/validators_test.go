package application

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

func TestValidatePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price string
		err   error
	}{
		{"integer", "10", nil},
		{"one decimal", "10.5", nil},
		{"two decimals", "10.25", nil},
		{"trailing zeros", "10.100", nil},
		{"three decimals", "10.125", domain.ErrInvalidPrice},
		{"zero", "0", domain.ErrInvalidPrice},
		{"negative", "-1", domain.ErrInvalidPrice},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			price, err := decimal.NewFromString(tt.price)
			require.NoError(t, err)

			if tt.err != nil {
				require.ErrorIs(t, validatePrice(price), tt.err)
				return
			}
			require.NoError(t, validatePrice(price))
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	t.Parallel()

	require.NoError(t, validateQuantity(1))
	require.ErrorIs(t, validateQuantity(0), domain.ErrInvalidQuantity)
	require.ErrorIs(t, validateQuantity(-3), domain.ErrInvalidQuantity)
}

package application

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocksim-network/stocksim-daemon/internal/infrastructure/storage/db/inmemory"
)

type nopPubSub struct{}

func (nopPubSub) Publish(_ string, _ string) error { return nil }
func (nopPubSub) Close() error                     { return nil }

func TestSaleTax(t *testing.T) {
	t.Parallel()

	s := newSettler(
		inmemory.NewRepoManager(), nopPubSub{},
		decimal.NewFromFloat(0.01), decimal.NewFromFloat(0.01), "1",
	)

	tests := []struct {
		name     string
		notional string
		tax      string
		lpShare  string
		feeShare string
	}{
		{"even split", "100", "1", "0.5", "0.5"},
		{"odd cents favor the pool", "150", "1.5", "0.75", "0.75"},
		{"rounded up half", "33", "0.33", "0.17", "0.16"},
		{"minimum tax", "0.5", "0.01", "0.01", "0"},
		{"below a cent", "0.1", "0.01", "0.01", "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tax, lpShare, feeShare := s.saleTax(decimal.RequireFromString(tt.notional))
			require.True(t, tax.Equal(decimal.RequireFromString(tt.tax)), tax.String())
			require.True(t, lpShare.Equal(decimal.RequireFromString(tt.lpShare)), lpShare.String())
			require.True(t, feeShare.Equal(decimal.RequireFromString(tt.feeShare)), feeShare.String())
			require.True(t, lpShare.Add(feeShare).Equal(tax))
		})
	}
}

package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
	"github.com/stocksim-network/stocksim-daemon/pkg/mathutil"
)

// validatePrice enforces a positive value with at most 2 decimal places.
// The check is on the value, not the representation, so trailing zeros like
// "10.100" are accepted.
func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return domain.ErrInvalidPrice
	}
	if !price.Equal(price.Round(mathutil.MoneyPrecision)) {
		return domain.ErrInvalidPrice
	}
	return nil
}

func validateQuantity(quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// validateOwner resolves the request owner, requiring human owners to be
// known accounts.
func validateOwner(
	ctx context.Context, repo ports.RepoManager, owner string,
) (domain.Counterparty, error) {
	counterparty := domain.ParseCounterparty(owner)
	if counterparty.IsLiquidityProvider() {
		return counterparty, nil
	}
	if _, err := repo.AccountRepository().GetAccount(ctx, counterparty.User); err != nil {
		return domain.Counterparty{}, err
	}
	return counterparty, nil
}

package application

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
	"github.com/stocksim-network/stocksim-daemon/pkg/mathutil"
)

// settler applies balance and inventory deltas to accounts as the side
// effect of fills and cancellations, and computes and splits the
// transaction tax on every sale payout.
type settler struct {
	repo         ports.RepoManager
	pubsub       ports.PubSub
	taxRate      decimal.Decimal
	minTax       decimal.Decimal
	feeAccountID string
}

func newSettler(
	repo ports.RepoManager, pubsub ports.PubSub,
	taxRate, minTax decimal.Decimal, feeAccountID string,
) *settler {
	return &settler{
		repo:         repo,
		pubsub:       pubsub,
		taxRate:      taxRate,
		minTax:       minTax,
		feeAccountID: feeAccountID,
	}
}

// saleTax returns the tax due on a sale payout of the given notional and its
// split. The split always satisfies lpShare + feeShare == tax to the cent.
func (s *settler) saleTax(notional decimal.Decimal) (tax, lpShare, feeShare decimal.Decimal) {
	tax = mathutil.Max(
		mathutil.RoundNearest(notional.Mul(s.taxRate), mathutil.MoneyPrecision),
		s.minTax,
	)
	lpShare = mathutil.RoundUp(tax.Div(decimal.NewFromInt(2)), mathutil.MoneyPrecision)
	feeShare = mathutil.RoundNearest(tax.Sub(lpShare), mathutil.MoneyPrecision)
	return
}

// creditSaleProceeds pays a human seller the after-tax proceeds of a sale,
// credits the liquidity provider's half of the tax straight to the market's
// cash reserve and the remainder to the protocol fee account.
func (s *settler) creditSaleProceeds(
	ctx context.Context, ticker, sellerID string, notional decimal.Decimal,
) error {
	tax, lpShare, feeShare := s.saleTax(notional)
	proceeds := mathutil.RoundNearest(notional.Sub(tax), mathutil.MoneyPrecision)

	if err := s.creditBalance(ctx, sellerID, proceeds); err != nil {
		return err
	}

	if err := s.repo.MarketRepository().UpdateMarket(
		ctx, ticker, func(m *domain.Market) (*domain.Market, error) {
			m.CreditReserve(lpShare)
			return m, nil
		},
	); err != nil {
		return err
	}

	if feeShare.IsPositive() {
		if err := s.creditBalance(ctx, s.feeAccountID, feeShare); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{
		"ticker": ticker,
		"seller": sellerID,
		"tax":    tax.String(),
	}).Debug("sale proceeds settled")

	return nil
}

func (s *settler) creditBalance(
	ctx context.Context, userID string, amount decimal.Decimal,
) error {
	return s.adjustBalance(ctx, userID, amount)
}

func (s *settler) debitBalance(
	ctx context.Context, userID string, amount decimal.Decimal,
) error {
	return s.adjustBalance(ctx, userID, amount.Neg())
}

func (s *settler) adjustBalance(
	ctx context.Context, userID string, delta decimal.Decimal,
) error {
	var balance decimal.Decimal
	if err := s.repo.AccountRepository().UpdateAccount(
		ctx, userID, func(a *domain.Account) (*domain.Account, error) {
			if delta.IsNegative() {
				if err := a.DebitBalance(delta.Neg()); err != nil {
					return nil, err
				}
			} else {
				a.CreditBalance(delta)
			}
			balance = a.Balance
			return a, nil
		},
	); err != nil {
		return err
	}

	s.publishEvent(ports.TopicBalance, BalanceEvent{UserID: userID, Balance: balance})
	return nil
}

func (s *settler) creditInventory(
	ctx context.Context, userID, ticker string, quantity int64,
) error {
	return s.adjustInventory(ctx, userID, ticker, quantity)
}

func (s *settler) debitInventory(
	ctx context.Context, userID, ticker string, quantity int64,
) error {
	return s.adjustInventory(ctx, userID, ticker, -quantity)
}

func (s *settler) adjustInventory(
	ctx context.Context, userID, ticker string, delta int64,
) error {
	var inventory map[string]int64
	if err := s.repo.AccountRepository().UpdateAccount(
		ctx, userID, func(a *domain.Account) (*domain.Account, error) {
			if delta < 0 {
				if err := a.DebitInventory(ticker, -delta); err != nil {
					return nil, err
				}
			} else {
				a.CreditInventory(ticker, delta)
			}
			inventory = a.Inventory
			return a, nil
		},
	); err != nil {
		return err
	}

	s.publishEvent(ports.TopicInventory, InventoryEvent{
		UserID: userID, Inventory: inventory,
	})
	return nil
}

// hasFunds checks a balance without debiting it.
func (s *settler) hasFunds(
	ctx context.Context, userID string, amount decimal.Decimal,
) (bool, error) {
	account, err := s.repo.AccountRepository().GetAccount(ctx, userID)
	if err != nil {
		return false, err
	}
	return account.Balance.GreaterThanOrEqual(amount), nil
}

// hasInventory checks a holding without debiting it.
func (s *settler) hasInventory(
	ctx context.Context, userID, ticker string, quantity int64,
) (bool, error) {
	account, err := s.repo.AccountRepository().GetAccount(ctx, userID)
	if err != nil {
		return false, err
	}
	return account.InventoryFor(ticker) >= quantity, nil
}

func (s *settler) publishEvent(topic string, event interface{}) {
	message, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("failed to serialize event")
		return
	}
	if err := s.pubsub.Publish(topic, string(message)); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("failed to publish event")
	}
}

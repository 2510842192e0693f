package application

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
)

// OperatorService is the administrative surface: market listing and account
// provisioning.
type OperatorService interface {
	// NewMarket lists a ticker with the given reserves and price bounds and
	// seeds the books with the AMM's initial orders.
	NewMarket(
		ctx context.Context, ticker string,
		baseReserve, quoteReserve, priceFloor, priceCeil decimal.Decimal,
	) (*MarketInfo, error)
	// GetMarket returns the current state of one market.
	GetMarket(ctx context.Context, ticker string) (*MarketInfo, error)
	// ListMarkets returns the current state of every listed market.
	ListMarkets(ctx context.Context) ([]MarketInfo, error)
	// CreateAccount provisions a trading account with a starting balance.
	CreateAccount(
		ctx context.Context, id string, balance decimal.Decimal,
	) (*AccountInfo, error)
	// Deposit credits cash or shares to an existing account.
	Deposit(
		ctx context.Context, id string,
		cash decimal.Decimal, ticker string, shares int64,
	) (*AccountInfo, error)
	// GetAccount returns an account's balance and inventory.
	GetAccount(ctx context.Context, id string) (*AccountInfo, error)
	// ListOrders returns every resting order of an owner across all books.
	ListOrders(ctx context.Context, owner string) ([]domain.Order, error)
}

type operatorService struct {
	repo   ports.RepoManager
	quotes *quotePublisher
	exec   *tickerExecutor
}

func newOperatorService(
	repo ports.RepoManager, quotes *quotePublisher, exec *tickerExecutor,
) *operatorService {
	return &operatorService{repo: repo, quotes: quotes, exec: exec}
}

func (s *operatorService) NewMarket(
	ctx context.Context, ticker string,
	baseReserve, quoteReserve, priceFloor, priceCeil decimal.Decimal,
) (*MarketInfo, error) {
	market, err := domain.NewMarket(
		ticker, baseReserve, quoteReserve, priceFloor, priceCeil,
	)
	if err != nil {
		return nil, err
	}

	unlock := s.exec.lock(ticker)
	defer unlock()

	if err := s.repo.MarketRepository().AddMarket(ctx, market); err != nil {
		return nil, err
	}

	for _, side := range []domain.Side{domain.SideBuy, domain.SideSell} {
		if err := s.quotes.syncLPOrder(ctx, market, side); err != nil {
			return nil, err
		}
	}

	if err := s.quotes.publishQuotes(ctx, ticker); err != nil {
		log.WithError(err).WithField("ticker", ticker).Warn(
			"failed to publish quotes for new market",
		)
	}

	log.WithFields(log.Fields{
		"ticker":       ticker,
		"baseReserve":  baseReserve.String(),
		"quoteReserve": quoteReserve.String(),
	}).Info("market listed")

	return marketInfo(market), nil
}

func (s *operatorService) GetMarket(
	ctx context.Context, ticker string,
) (*MarketInfo, error) {
	market, err := s.repo.MarketRepository().GetMarket(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return marketInfo(market), nil
}

func (s *operatorService) ListMarkets(ctx context.Context) ([]MarketInfo, error) {
	markets, err := s.repo.MarketRepository().GetAllMarkets(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]MarketInfo, 0, len(markets))
	for i := range markets {
		infos = append(infos, *marketInfo(&markets[i]))
	}
	return infos, nil
}

func (s *operatorService) CreateAccount(
	ctx context.Context, id string, balance decimal.Decimal,
) (*AccountInfo, error) {
	account, err := domain.NewAccount(id, balance)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AccountRepository().AddAccount(ctx, account); err != nil {
		return nil, err
	}

	log.WithField("account", id).Info("account created")

	return accountInfo(account), nil
}

func (s *operatorService) Deposit(
	ctx context.Context, id string,
	cash decimal.Decimal, ticker string, shares int64,
) (*AccountInfo, error) {
	if cash.IsNegative() || shares < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var updated *domain.Account
	if err := s.repo.AccountRepository().UpdateAccount(
		ctx, id, func(a *domain.Account) (*domain.Account, error) {
			if cash.IsPositive() {
				a.CreditBalance(cash)
			}
			if shares > 0 {
				if ticker == "" {
					return nil, domain.ErrMarketInvalidTicker
				}
				a.CreditInventory(ticker, shares)
			}
			updated = a
			return a, nil
		},
	); err != nil {
		return nil, err
	}

	return accountInfo(updated), nil
}

func (s *operatorService) GetAccount(
	ctx context.Context, id string,
) (*AccountInfo, error) {
	account, err := s.repo.AccountRepository().GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	return accountInfo(account), nil
}

func (s *operatorService) ListOrders(
	ctx context.Context, owner string,
) ([]domain.Order, error) {
	return s.repo.OrderRepository().GetOrdersForOwner(
		ctx, domain.ParseCounterparty(owner),
	)
}

func marketInfo(m *domain.Market) *MarketInfo {
	return &MarketInfo{
		Ticker:       m.Ticker,
		BaseReserve:  m.BaseReserve,
		QuoteReserve: m.QuoteReserve,
		PriceFloor:   m.PriceFloor,
		PriceCeil:    m.PriceCeil,
		Liquidity:    m.Liquidity,
		SpotPrice:    m.SpotPrice(),
		BuyQuote:     m.BuyQuote,
		SellQuote:    m.SellQuote,
	}
}

func accountInfo(a *domain.Account) *AccountInfo {
	return &AccountInfo{ID: a.ID, Balance: a.Balance, Inventory: a.Inventory}
}

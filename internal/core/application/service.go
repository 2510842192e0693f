package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
)

// ServiceOpts tunes the engine's settlement and quoting behavior.
type ServiceOpts struct {
	// TaxRate is the fraction of every human sale payout collected as tax.
	TaxRate decimal.Decimal
	// MinTax is the floor any nonzero tax is raised to.
	MinTax decimal.Decimal
	// FeeAccountID receives the protocol's share of the tax.
	FeeAccountID string
	// RequoteDelay is the grace window before the AMM side not hit by a fill
	// is re-quoted.
	RequoteDelay time.Duration
	// QuoteRefreshRate caps the periodic quote broadcast, in tickers per
	// second. Zero disables the refresh loop.
	QuoteRefreshRate int
}

// Service wires the trade and operator services over shared per-ticker
// locking and quote publishing state.
type Service struct {
	trade    *tradeService
	operator *operatorService
	quotes   *quotePublisher
	opts     ServiceOpts

	cancelRefresh context.CancelFunc
}

func NewService(
	repo ports.RepoManager, pubsub ports.PubSub, opts ServiceOpts,
) *Service {
	exec := newTickerExecutor()
	quotes := newQuotePublisher(repo, pubsub, exec, opts.RequoteDelay)
	settler := newSettler(repo, pubsub, opts.TaxRate, opts.MinTax, opts.FeeAccountID)

	return &Service{
		trade:    newTradeService(repo, pubsub, settler, quotes, exec),
		operator: newOperatorService(repo, quotes, exec),
		quotes:   quotes,
		opts:     opts,
	}
}

func (s *Service) Trade() TradeService {
	return s.trade
}

func (s *Service) Operator() OperatorService {
	return s.operator
}

// Start launches the periodic quote refresh loop, when enabled.
func (s *Service) Start() {
	if s.opts.QuoteRefreshRate <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelRefresh = cancel
	go s.quotes.refreshLoop(ctx, s.opts.QuoteRefreshRate)
}

// Stop halts the refresh loop and cancels pending delayed re-quotes.
func (s *Service) Stop() {
	if s.cancelRefresh != nil {
		s.cancelRefresh()
	}
	s.quotes.stop()
}

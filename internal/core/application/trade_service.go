package application

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
)

// TradeService is the matching engine's public surface: order placement and
// cancellation plus read access to quotes and books.
type TradeService interface {
	// PlaceOrder validates, matches and settles an inbound order, then
	// publishes the ticker's refreshed quotes.
	PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
	// CancelOrder removes resting quantity at a price for an owner and
	// refunds the escrowed funds or inventory.
	CancelOrder(ctx context.Context, req CancelRequest) error
	// GetQuotes returns the ticker's current top of book.
	GetQuotes(ctx context.Context, ticker string) (*Quotes, error)
	// GetBook returns one side of a ticker's order book, best price first.
	GetBook(ctx context.Context, ticker, side string) ([]domain.Order, error)
	// GetTopOfBook returns the best resting order of a side, nil when the
	// side is empty.
	GetTopOfBook(ctx context.Context, ticker, side string) (*domain.Order, error)
}

type tradeService struct {
	repo    ports.RepoManager
	pubsub  ports.PubSub
	settler *settler
	quotes  *quotePublisher
	exec    *tickerExecutor
}

func newTradeService(
	repo ports.RepoManager, pubsub ports.PubSub,
	settler *settler, quotes *quotePublisher, exec *tickerExecutor,
) *tradeService {
	return &tradeService{
		repo:    repo,
		pubsub:  pubsub,
		settler: settler,
		quotes:  quotes,
		exec:    exec,
	}
}

func (s *tradeService) PlaceOrder(
	ctx context.Context, req OrderRequest,
) (*OrderResult, error) {
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return nil, err
	}
	execution, err := domain.ParseExecutionType(req.Execution)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}
	taker, err := validateOwner(ctx, s.repo, req.Owner)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.MarketRepository().GetMarket(ctx, req.Ticker); err != nil {
		return nil, err
	}

	unlock := s.exec.lock(req.Ticker)
	defer unlock()

	var result *OrderResult
	switch execution {
	case domain.ExecutionMarket:
		result, err = s.handleMarketOrder(ctx, req, side, taker)
	default:
		if err := validateQuantity(req.Quantity); err != nil {
			return nil, err
		}
		result, err = s.handleBookOrder(ctx, req, side, taker)
	}
	if err != nil {
		return nil, err
	}

	if err := s.quotes.publishQuotes(ctx, req.Ticker); err != nil {
		log.WithError(err).WithField("ticker", req.Ticker).Warn(
			"failed to publish quotes after order",
		)
	}
	return result, nil
}

// handleMarketOrder trades exactly 1 unit at the best opposite price, which
// must still match the price the client saw. On an empty or moved book the
// refreshed quotes are published before the error returns, so the caller can
// retry with current data.
func (s *tradeService) handleMarketOrder(
	ctx context.Context, req OrderRequest,
	side domain.Side, taker domain.Counterparty,
) (*OrderResult, error) {
	book, err := s.repo.OrderRepository().GetBook(
		ctx, req.Ticker, side.Opposite(),
	)
	if err != nil {
		return nil, err
	}

	best, ok := book.Best()
	if !ok {
		s.publishRequote(ctx, req.Ticker)
		return nil, ErrTradeNoLiquidity
	}
	if !best.Price.Equal(req.Price) {
		s.publishRequote(ctx, req.Ticker)
		return nil, ErrTradePriceStale
	}

	if best.Owner == taker {
		cancelled, err := s.cancelSelfTrade(ctx, req.Ticker, best)
		if err != nil {
			return nil, err
		}
		return &OrderResult{SelfTradeCancelled: cancelled}, nil
	}

	if err := s.checkTakerCover(ctx, taker, req.Ticker, side, best.Price, 1); err != nil {
		return nil, err
	}

	fill, err := s.executeFill(ctx, req.Ticker, side, taker, best, 1)
	if err != nil {
		return nil, err
	}

	return &OrderResult{Fills: []Fill{*fill}, FilledQuantity: 1}, nil
}

// handleBookOrder walks the opposite book while its best price is acceptable
// for the limit, filling as it goes. The book is re-read after every fill:
// AMM fills move the reserves and replace the resting LP order, so the next
// best price is only known once the previous fill has settled. Any remainder
// is escrowed and posted to the book.
func (s *tradeService) handleBookOrder(
	ctx context.Context, req OrderRequest,
	side domain.Side, taker domain.Counterparty,
) (*OrderResult, error) {
	if err := s.checkTakerCover(
		ctx, taker, req.Ticker, side, req.Price, req.Quantity,
	); err != nil {
		return nil, err
	}

	result := &OrderResult{}
	remaining := req.Quantity

	for remaining > 0 {
		book, err := s.repo.OrderRepository().GetBook(
			ctx, req.Ticker, side.Opposite(),
		)
		if err != nil {
			return nil, err
		}
		best, ok := book.Best()
		if !ok || !priceAcceptable(side, req.Price, best.Price) {
			break
		}

		if best.Owner == taker {
			cancelled, err := s.cancelSelfTrade(ctx, req.Ticker, best)
			if err != nil {
				return nil, err
			}
			result.SelfTradeCancelled += cancelled
			continue
		}

		fillQty := remaining
		if best.Quantity < fillQty {
			fillQty = best.Quantity
		}

		fill, err := s.executeFill(ctx, req.Ticker, side, taker, best, fillQty)
		if err != nil {
			return nil, err
		}
		result.Fills = append(result.Fills, *fill)
		result.FilledQuantity += fillQty
		remaining -= fillQty
	}

	if remaining > 0 {
		order, err := s.restRemainder(ctx, req, side, taker, remaining)
		if err != nil {
			return nil, err
		}
		result.RestingOrderID = order.ID
		result.RestingQuantity = remaining
	}

	return result, nil
}

// executeFill matches fillQty units between the taker and one resting maker
// at the maker's price, updates the book or the AMM reserves, and settles
// both sides. Settlement of a fill completes before the next one starts.
func (s *tradeService) executeFill(
	ctx context.Context, ticker string,
	takerSide domain.Side, taker domain.Counterparty,
	maker domain.Order, fillQty int64,
) (*Fill, error) {
	notional := maker.Price.Mul(decimal.NewFromInt(fillQty))

	if maker.Owner.IsLiquidityProvider() {
		if err := s.fillAgainstAMM(ctx, ticker, takerSide, maker.Price, fillQty); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.OrderRepository().UpdateBook(
			ctx, ticker, takerSide.Opposite(),
			func(b *domain.OrderBook) (*domain.OrderBook, error) {
				b.Consume(maker.Price, fillQty)
				return b, nil
			},
		); err != nil {
			return nil, err
		}
		if err := s.settleHumanMaker(ctx, ticker, takerSide, maker.Owner, notional, fillQty); err != nil {
			return nil, err
		}
	}

	if err := s.settleTaker(ctx, ticker, takerSide, taker, notional, fillQty); err != nil {
		return nil, err
	}

	fill := &Fill{
		Ticker:   ticker,
		Quantity: fillQty,
		Price:    maker.Price,
		Taker:    taker.String(),
		Maker:    maker.Owner.String(),
	}
	s.publishTrade(fill)

	log.WithFields(log.Fields{
		"ticker":   ticker,
		"side":     takerSide.String(),
		"price":    maker.Price.String(),
		"quantity": fillQty,
	}).Debug("fill executed")

	return fill, nil
}

// fillAgainstAMM moves the reserves by the fill, replaces the resting LP
// order on the hit side with one at the new quote, and arms the delayed
// re-quote of the other side.
func (s *tradeService) fillAgainstAMM(
	ctx context.Context, ticker string,
	takerSide domain.Side, price decimal.Decimal, fillQty int64,
) error {
	deltaShares := fillQty
	deltaCash := price.Mul(decimal.NewFromInt(fillQty)).Neg()
	if takerSide == domain.SideBuy {
		deltaShares = -fillQty
		deltaCash = deltaCash.Neg()
	}

	var market *domain.Market
	if err := s.repo.MarketRepository().UpdateMarket(
		ctx, ticker, func(m *domain.Market) (*domain.Market, error) {
			if err := m.ApplyTrade(deltaShares, deltaCash); err != nil {
				return nil, err
			}
			market = m
			return m, nil
		},
	); err != nil {
		return err
	}

	if err := s.quotes.syncLPOrder(ctx, market, takerSide.Opposite()); err != nil {
		return err
	}
	s.quotes.scheduleRequote(ticker, takerSide)
	return nil
}

// settleTaker applies the taker's side of a fill. A selling taker is paid
// net of the transaction tax.
func (s *tradeService) settleTaker(
	ctx context.Context, ticker string,
	takerSide domain.Side, taker domain.Counterparty,
	notional decimal.Decimal, fillQty int64,
) error {
	if takerSide == domain.SideBuy {
		if err := s.settler.debitBalance(ctx, taker.User, notional); err != nil {
			return err
		}
		return s.settler.creditInventory(ctx, taker.User, ticker, fillQty)
	}

	if err := s.settler.debitInventory(ctx, taker.User, ticker, fillQty); err != nil {
		return err
	}
	return s.settler.creditSaleProceeds(ctx, ticker, taker.User, notional)
}

// settleHumanMaker applies the maker's side of a fill. The maker's funds or
// shares were escrowed when the order was posted, so a bought share is the
// only credit a buying maker gets here, while a selling maker is paid net of
// the transaction tax.
func (s *tradeService) settleHumanMaker(
	ctx context.Context, ticker string,
	takerSide domain.Side, maker domain.Counterparty,
	notional decimal.Decimal, fillQty int64,
) error {
	if takerSide == domain.SideBuy {
		return s.settler.creditSaleProceeds(ctx, ticker, maker.User, notional)
	}
	return s.settler.creditInventory(ctx, maker.User, ticker, fillQty)
}

// cancelSelfTrade removes a resting order the taker crossed with their own
// and refunds its escrow. The fill does not happen.
func (s *tradeService) cancelSelfTrade(
	ctx context.Context, ticker string, resting domain.Order,
) (int64, error) {
	var removed int64
	if err := s.repo.OrderRepository().UpdateBook(
		ctx, ticker, resting.Side,
		func(b *domain.OrderBook) (*domain.OrderBook, error) {
			removed = b.Reduce(resting.Owner, resting.Price, resting.Quantity)
			return b, nil
		},
	); err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.refundEscrow(ctx, ticker, resting.Side, resting.Owner, resting.Price, removed); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"ticker":   ticker,
		"owner":    resting.Owner.String(),
		"quantity": removed,
	}).Debug("self trade cancelled")

	return removed, nil
}

// restRemainder escrows the unfilled remainder and posts it to the book.
func (s *tradeService) restRemainder(
	ctx context.Context, req OrderRequest,
	side domain.Side, taker domain.Counterparty, remaining int64,
) (*domain.Order, error) {
	if !taker.IsLiquidityProvider() {
		if side == domain.SideBuy {
			escrow := req.Price.Mul(decimal.NewFromInt(remaining))
			if err := s.settler.debitBalance(ctx, taker.User, escrow); err != nil {
				return nil, err
			}
		} else {
			if err := s.settler.debitInventory(ctx, taker.User, req.Ticker, remaining); err != nil {
				return nil, err
			}
		}
	}

	order := domain.NewOrder(req.Ticker, side, remaining, req.Price, taker)
	if err := s.repo.OrderRepository().UpdateBook(
		ctx, req.Ticker, side,
		func(b *domain.OrderBook) (*domain.OrderBook, error) {
			b.Insert(order)
			return b, nil
		},
	); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *tradeService) CancelOrder(ctx context.Context, req CancelRequest) error {
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return err
	}
	if err := validatePrice(req.Price); err != nil {
		return err
	}
	if err := validateQuantity(req.Quantity); err != nil {
		return err
	}
	owner, err := validateOwner(ctx, s.repo, req.Owner)
	if err != nil {
		return err
	}
	if _, err := s.repo.MarketRepository().GetMarket(ctx, req.Ticker); err != nil {
		return err
	}

	unlock := s.exec.lock(req.Ticker)
	defer unlock()

	var removed int64
	if err := s.repo.OrderRepository().UpdateBook(
		ctx, req.Ticker, side,
		func(b *domain.OrderBook) (*domain.OrderBook, error) {
			removed = b.Reduce(owner, req.Price, req.Quantity)
			return b, nil
		},
	); err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrOrderNotFound
	}

	if err := s.refundEscrow(ctx, req.Ticker, side, owner, req.Price, removed); err != nil {
		return err
	}

	if err := s.quotes.publishQuotes(ctx, req.Ticker); err != nil {
		log.WithError(err).WithField("ticker", req.Ticker).Warn(
			"failed to publish quotes after cancel",
		)
	}
	return nil
}

func (s *tradeService) GetQuotes(
	ctx context.Context, ticker string,
) (*Quotes, error) {
	if _, err := s.repo.MarketRepository().GetMarket(ctx, ticker); err != nil {
		return nil, err
	}
	return s.quotes.topOfBook(ctx, ticker)
}

func (s *tradeService) GetBook(
	ctx context.Context, ticker, side string,
) ([]domain.Order, error) {
	parsedSide, err := domain.ParseSide(side)
	if err != nil {
		return nil, err
	}
	book, err := s.repo.OrderRepository().GetBook(ctx, ticker, parsedSide)
	if err != nil {
		return nil, err
	}
	return book.Orders, nil
}

func (s *tradeService) GetTopOfBook(
	ctx context.Context, ticker, side string,
) (*domain.Order, error) {
	parsedSide, err := domain.ParseSide(side)
	if err != nil {
		return nil, err
	}
	book, err := s.repo.OrderRepository().GetBook(ctx, ticker, parsedSide)
	if err != nil {
		return nil, err
	}
	best, ok := book.Best()
	if !ok {
		return nil, nil
	}
	return &best, nil
}

// checkTakerCover verifies the taker can cover the whole order upfront: cash
// for a buy at its limit, shares for a sell. Per-fill debits then cannot
// fail because fills never execute above the limit.
func (s *tradeService) checkTakerCover(
	ctx context.Context, taker domain.Counterparty,
	ticker string, side domain.Side, price decimal.Decimal, quantity int64,
) error {
	if taker.IsLiquidityProvider() {
		return nil
	}
	if side == domain.SideBuy {
		required := price.Mul(decimal.NewFromInt(quantity))
		ok, err := s.settler.hasFunds(ctx, taker.User, required)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientFunds
		}
		return nil
	}
	ok, err := s.settler.hasInventory(ctx, taker.User, ticker, quantity)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInsufficientInventory
	}
	return nil
}

// refundEscrow returns what was locked when an order was posted: cash for a
// buy, shares for a sell. The AMM escrows nothing, its orders are backed by
// the reserves.
func (s *tradeService) refundEscrow(
	ctx context.Context, ticker string, side domain.Side,
	owner domain.Counterparty, price decimal.Decimal, quantity int64,
) error {
	if owner.IsLiquidityProvider() {
		return nil
	}
	if side == domain.SideBuy {
		refund := price.Mul(decimal.NewFromInt(quantity))
		return s.settler.creditBalance(ctx, owner.User, refund)
	}
	return s.settler.creditInventory(ctx, owner.User, ticker, quantity)
}

func (s *tradeService) publishRequote(ctx context.Context, ticker string) {
	if err := s.quotes.publishQuotes(ctx, ticker); err != nil {
		log.WithError(err).WithField("ticker", ticker).Warn(
			"failed to publish requote",
		)
	}
}

func (s *tradeService) publishTrade(fill *Fill) {
	s.settler.publishEvent(ports.TopicTrade, fill)
}

// priceAcceptable reports whether the best opposite price is within the
// taker's limit.
func priceAcceptable(takerSide domain.Side, limit, best decimal.Decimal) bool {
	if takerSide == domain.SideBuy {
		return best.LessThanOrEqual(limit)
	}
	return best.GreaterThanOrEqual(limit)
}

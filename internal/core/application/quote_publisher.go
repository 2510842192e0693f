package application

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
)

// quotePublisher recomputes a ticker's top-of-book quotes after any state
// change and broadcasts them. It also owns the delayed re-quote of the AMM
// side not directly hit by a fill: one cancellable timer per (ticker, side),
// where scheduling supersedes any pending one.
type quotePublisher struct {
	repo         ports.RepoManager
	pubsub       ports.PubSub
	exec         *tickerExecutor
	requoteDelay time.Duration

	mtx    sync.Mutex
	timers map[string]*time.Timer
}

func newQuotePublisher(
	repo ports.RepoManager, pubsub ports.PubSub,
	exec *tickerExecutor, requoteDelay time.Duration,
) *quotePublisher {
	return &quotePublisher{
		repo:         repo,
		pubsub:       pubsub,
		exec:         exec,
		requoteDelay: requoteDelay,
		timers:       map[string]*time.Timer{},
	}
}

// topOfBook reads the current quote view: a ticker's buy quote is the best
// resting sell price, its sell quote the best resting buy price.
func (p *quotePublisher) topOfBook(
	ctx context.Context, ticker string,
) (*Quotes, error) {
	quotes := &Quotes{Ticker: ticker, Timestamp: time.Now().UTC()}

	sellBook, err := p.repo.OrderRepository().GetBook(ctx, ticker, domain.SideSell)
	if err != nil {
		return nil, err
	}
	if best, ok := sellBook.Best(); ok {
		buyQuote := best.Price
		quotes.BuyQuote = &buyQuote
	}

	buyBook, err := p.repo.OrderRepository().GetBook(ctx, ticker, domain.SideBuy)
	if err != nil {
		return nil, err
	}
	if best, ok := buyBook.Best(); ok {
		sellQuote := best.Price
		quotes.SellQuote = &sellQuote
	}

	return quotes, nil
}

// publishQuotes recomputes and broadcasts the ticker's top of book.
func (p *quotePublisher) publishQuotes(ctx context.Context, ticker string) error {
	quotes, err := p.topOfBook(ctx, ticker)
	if err != nil {
		return err
	}

	message, err := json.Marshal(quotes)
	if err != nil {
		return err
	}
	if err := p.pubsub.Publish(ports.TopicQuote, string(message)); err != nil {
		log.WithError(err).WithField("ticker", ticker).Warn(
			"failed to publish quotes",
		)
	}
	return nil
}

// syncLPOrder replaces the AMM's resting order on one side of the book with
// a fresh one at the market's current quote, or removes it when that side is
// unavailable. LP orders are recreated, never decremented, so their price
// always tracks the reserves.
func (p *quotePublisher) syncLPOrder(
	ctx context.Context, market *domain.Market, side domain.Side,
) error {
	quote := market.BuyQuote
	if side == domain.SideSell {
		quote = market.SellQuote
	}

	return p.repo.OrderRepository().UpdateBook(
		ctx, market.Ticker, side,
		func(b *domain.OrderBook) (*domain.OrderBook, error) {
			b.CancelAll(market.LiquidityProvider())
			if quote.Available {
				b.Insert(domain.NewOrder(
					market.Ticker, side, 1, quote.Price, market.LiquidityProvider(),
				))
			}
			return b, nil
		},
	)
}

// scheduleRequote arms the delayed re-quote of one side, superseding any
// timer already pending for the same (ticker, side).
func (p *quotePublisher) scheduleRequote(ticker string, side domain.Side) {
	key := ticker + "/" + side.String()

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if pending, ok := p.timers[key]; ok {
		pending.Stop()
	}
	p.timers[key] = time.AfterFunc(p.requoteDelay, func() {
		if err := p.delayedRequote(ticker, side); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"ticker": ticker,
				"side":   side.String(),
			}).Warn("delayed requote failed")
		}
	})
}

// delayedRequote re-derives the quotes from the reserves as they are when
// the timer fires, not as they were at schedule time, and replaces the
// resting LP order only when the recomputed price actually differs from the
// top of book.
func (p *quotePublisher) delayedRequote(ticker string, side domain.Side) error {
	ctx := context.Background()

	unlock := p.exec.lock(ticker)
	defer unlock()

	var market *domain.Market
	if err := p.repo.MarketRepository().UpdateMarket(
		ctx, ticker, func(m *domain.Market) (*domain.Market, error) {
			if err := m.Requote(); err != nil {
				return nil, err
			}
			market = m
			return m, nil
		},
	); err != nil {
		return err
	}

	quote := market.BuyQuote
	if side == domain.SideSell {
		quote = market.SellQuote
	}

	book, err := p.repo.OrderRepository().GetBook(ctx, ticker, side)
	if err != nil {
		return err
	}
	var topPrice *decimal.Decimal
	if best, ok := book.Best(); ok {
		topPrice = &best.Price
	}

	unchanged := quote.Available && topPrice != nil && quote.Price.Equal(*topPrice)
	if !unchanged {
		if err := p.syncLPOrder(ctx, market, side); err != nil {
			return err
		}
	}

	return p.publishQuotes(ctx, ticker)
}

// refreshLoop periodically republishes every market's quotes, paced by a
// rate limiter so a long market list cannot flood subscribers.
func (p *quotePublisher) refreshLoop(ctx context.Context, perSecond int) {
	limiter := ratelimit.New(perSecond)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		limiter.Take()

		markets, err := p.repo.MarketRepository().GetAllMarkets(ctx)
		if err != nil {
			log.WithError(err).Warn("quote refresh: failed to list markets")
			continue
		}
		for _, market := range markets {
			limiter.Take()
			if err := p.publishQuotes(ctx, market.Ticker); err != nil {
				log.WithError(err).WithField("ticker", market.Ticker).Warn(
					"quote refresh failed",
				)
			}
		}
	}
}

// stop cancels every pending delayed re-quote.
func (p *quotePublisher) stop() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for key, timer := range p.timers {
		timer.Stop()
		delete(p.timers, key)
	}
}

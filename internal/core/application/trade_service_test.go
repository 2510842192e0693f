package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocksim-network/stocksim-daemon/internal/core/application"
	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
	"github.com/stocksim-network/stocksim-daemon/internal/infrastructure/storage/db/inmemory"
)

var ctx = context.Background()

type mockPubSub struct {
	mtx      sync.Mutex
	messages map[string][]string
}

func newMockPubSub() *mockPubSub {
	return &mockPubSub{messages: map[string][]string{}}
}

func (m *mockPubSub) Publish(topic string, message string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.messages[topic] = append(m.messages[topic], message)
	return nil
}

func (m *mockPubSub) Close() error { return nil }

func (m *mockPubSub) count(topic string) int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.messages[topic])
}

func newTestService(t *testing.T, requoteDelay time.Duration) (*application.Service, *mockPubSub) {
	t.Helper()

	pubsub := newMockPubSub()
	svc := application.NewService(
		inmemory.NewRepoManager(), pubsub, application.ServiceOpts{
			TaxRate:      decimal.NewFromFloat(0.01),
			MinTax:       decimal.NewFromFloat(0.01),
			FeeAccountID: "1",
			RequoteDelay: requoteDelay,
		},
	)
	t.Cleanup(svc.Stop)

	_, err := svc.Operator().CreateAccount(ctx, "1", decimal.Zero)
	require.NoError(t, err)

	return svc, pubsub
}

func newFundedAccount(
	t *testing.T, svc *application.Service,
	id string, balance decimal.Decimal, ticker string, shares int64,
) {
	t.Helper()

	_, err := svc.Operator().CreateAccount(ctx, id, balance)
	require.NoError(t, err)
	if shares > 0 {
		_, err := svc.Operator().Deposit(ctx, id, decimal.Zero, ticker, shares)
		require.NoError(t, err)
	}
}

func newAMMMarket(t *testing.T, svc *application.Service) *application.MarketInfo {
	t.Helper()

	info, err := svc.Operator().NewMarket(
		ctx, "ACME",
		decimal.NewFromInt(50), decimal.NewFromInt(500),
		decimal.NewFromInt(5), decimal.NewFromInt(500),
	)
	require.NoError(t, err)
	return info
}

func newEmptyMarket(t *testing.T, svc *application.Service) {
	t.Helper()

	_, err := svc.Operator().NewMarket(
		ctx, "ACME",
		decimal.Zero, decimal.Zero,
		decimal.NewFromInt(5), decimal.NewFromInt(500),
	)
	require.NoError(t, err)
}

func expectedSaleProceeds(notional decimal.Decimal) decimal.Decimal {
	tax := notional.Mul(decimal.NewFromFloat(0.01)).Round(2)
	if tax.LessThan(decimal.NewFromFloat(0.01)) {
		tax = decimal.NewFromFloat(0.01)
	}
	return notional.Sub(tax).Round(2)
}

func TestNewMarketSeedsBooks(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Hour)
	info := newAMMMarket(t, svc)

	require.True(t, info.BuyQuote.Available)
	require.True(t, info.SellQuote.Available)
	require.True(t, info.BuyQuote.Price.LessThan(info.SellQuote.Price))

	buyBook, err := svc.Trade().GetBook(ctx, "ACME", "buy")
	require.NoError(t, err)
	require.Len(t, buyBook, 1)
	require.Equal(t, "LP-ACME", buyBook[0].Owner.String())
	require.True(t, buyBook[0].Price.Equal(info.BuyQuote.Price))

	sellBook, err := svc.Trade().GetBook(ctx, "ACME", "sell")
	require.NoError(t, err)
	require.Len(t, sellBook, 1)
	require.True(t, sellBook[0].Price.Equal(info.SellQuote.Price))

	quotes, err := svc.Trade().GetQuotes(ctx, "ACME")
	require.NoError(t, err)
	require.NotNil(t, quotes.BuyQuote)
	require.NotNil(t, quotes.SellQuote)
	require.True(t, quotes.BuyQuote.Equal(info.SellQuote.Price))
	require.True(t, quotes.SellQuote.Equal(info.BuyQuote.Price))
}

func TestMarketOrderBuyFromAMM(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Hour)
	info := newAMMMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(1000), "", 0)

	ask := info.SellQuote.Price
	result, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "buy",
		Price:     ask,
		Owner:     "alice",
		Execution: "market",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.FilledQuantity)
	require.Len(t, result.Fills, 1)
	require.Equal(t, "LP-ACME", result.Fills[0].Maker)
	require.True(t, result.Fills[0].Price.Equal(ask))

	alice, err := svc.Operator().GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.True(t, alice.Balance.Equal(decimal.NewFromInt(1000).Sub(ask)))
	require.Equal(t, int64(1), alice.Inventory["ACME"])

	market, err := svc.Operator().GetMarket(ctx, "ACME")
	require.NoError(t, err)
	require.True(t, market.BaseReserve.Equal(decimal.NewFromInt(49)))
	require.True(t, market.QuoteReserve.Equal(decimal.NewFromInt(500).Add(ask)))

	// the hit side is re-quoted right away and fewer shares mean a higher ask
	sellBook, err := svc.Trade().GetBook(ctx, "ACME", "sell")
	require.NoError(t, err)
	require.Len(t, sellBook, 1)
	require.True(t, sellBook[0].Price.GreaterThan(ask))

	// the other side keeps its price until the grace window elapses
	buyBook, err := svc.Trade().GetBook(ctx, "ACME", "buy")
	require.NoError(t, err)
	require.Len(t, buyBook, 1)
	require.True(t, buyBook[0].Price.Equal(info.BuyQuote.Price))
}

func TestMarketOrderSellToAMM(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Hour)
	info := newAMMMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.Zero, "ACME", 5)

	bid := info.BuyQuote.Price
	result, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "sell",
		Price:     bid,
		Owner:     "alice",
		Execution: "market",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.FilledQuantity)

	alice, err := svc.Operator().GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(4), alice.Inventory["ACME"])
	require.True(t, alice.Balance.Equal(expectedSaleProceeds(bid)))

	// the pool half of the tax flows back into the cash reserve
	market, err := svc.Operator().GetMarket(ctx, "ACME")
	require.NoError(t, err)
	require.True(t, market.BaseReserve.Equal(decimal.NewFromInt(51)))
	require.True(t, market.QuoteReserve.GreaterThan(decimal.NewFromInt(500).Sub(bid)))

	fee, err := svc.Operator().GetAccount(ctx, "1")
	require.NoError(t, err)
	require.True(t, fee.Balance.GreaterThanOrEqual(decimal.Zero))
}

func TestMarketOrderNoLiquidity(t *testing.T) {
	t.Parallel()

	svc, pubsub := newTestService(t, time.Hour)
	newEmptyMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(1000), "", 0)

	before := pubsub.count(ports.TopicQuote)
	_, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "buy",
		Price:     decimal.NewFromInt(10),
		Owner:     "alice",
		Execution: "market",
	})
	require.ErrorIs(t, err, application.ErrTradeNoLiquidity)
	require.Greater(t, pubsub.count(ports.TopicQuote), before)
}

func TestMarketOrderPriceStale(t *testing.T) {
	t.Parallel()

	svc, pubsub := newTestService(t, time.Hour)
	info := newAMMMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(1000), "", 0)

	before := pubsub.count(ports.TopicQuote)
	_, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "buy",
		Price:     info.SellQuote.Price.Add(decimal.NewFromInt(1)),
		Owner:     "alice",
		Execution: "market",
	})
	require.ErrorIs(t, err, application.ErrTradePriceStale)
	require.Greater(t, pubsub.count(ports.TopicQuote), before)
}

func TestMarketOrderSelfTrade(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Hour)
	newEmptyMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(1000), "ACME", 2)

	price := decimal.NewFromInt(12)
	posted, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "sell",
		Quantity:  2,
		Price:     price,
		Owner:     "alice",
		Execution: "book",
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), posted.RestingQuantity)

	result, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "buy",
		Price:     price,
		Owner:     "alice",
		Execution: "market",
	})
	require.NoError(t, err)
	require.Zero(t, result.FilledQuantity)
	require.Equal(t, int64(2), result.SelfTradeCancelled)

	// the escrowed shares are back and nothing rests anymore
	alice, err := svc.Operator().GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(2), alice.Inventory["ACME"])
	require.True(t, alice.Balance.Equal(decimal.NewFromInt(1000)))

	sellBook, err := svc.Trade().GetBook(ctx, "ACME", "sell")
	require.NoError(t, err)
	require.Empty(t, sellBook)
}

func TestBookOrderWalksTheBookAndRests(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Hour)
	newEmptyMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(1000), "", 0)
	newFundedAccount(t, svc, "bob", decimal.Zero, "ACME", 6)

	for _, price := range []int64{10, 11, 12} {
		_, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
			Ticker:    "ACME",
			Side:      "sell",
			Quantity:  2,
			Price:     decimal.NewFromInt(price),
			Owner:     "bob",
			Execution: "book",
		})
		require.NoError(t, err)
	}

	result, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "buy",
		Quantity:  10,
		Price:     decimal.NewFromInt(12),
		Owner:     "alice",
		Execution: "book",
	})
	require.NoError(t, err)
	require.Equal(t, int64(6), result.FilledQuantity)
	require.Len(t, result.Fills, 3)
	require.Equal(t, int64(4), result.RestingQuantity)
	require.NotEmpty(t, result.RestingOrderID)

	// 2*10 + 2*11 + 2*12 paid for the fills, 4*12 escrowed for the rest
	alice, err := svc.Operator().GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.True(t, alice.Balance.Equal(decimal.NewFromInt(1000-66-48)), alice.Balance.String())
	require.Equal(t, int64(6), alice.Inventory["ACME"])

	// bob is paid per fill, net of the tax on each notional
	bob, err := svc.Operator().GetAccount(ctx, "bob")
	require.NoError(t, err)
	expected := expectedSaleProceeds(decimal.NewFromInt(20)).
		Add(expectedSaleProceeds(decimal.NewFromInt(22))).
		Add(expectedSaleProceeds(decimal.NewFromInt(24)))
	require.True(t, bob.Balance.Equal(expected), bob.Balance.String())
	require.Zero(t, bob.Inventory["ACME"])

	buyBook, err := svc.Trade().GetBook(ctx, "ACME", "buy")
	require.NoError(t, err)
	require.Len(t, buyBook, 1)
	require.Equal(t, int64(4), buyBook[0].Quantity)
	require.True(t, buyBook[0].Price.Equal(decimal.NewFromInt(12)))

	sellBook, err := svc.Trade().GetBook(ctx, "ACME", "sell")
	require.NoError(t, err)
	require.Empty(t, sellBook)

	// half of each fill's tax went to the pool, the other half to the fees
	market, err := svc.Operator().GetMarket(ctx, "ACME")
	require.NoError(t, err)
	require.True(t, market.QuoteReserve.Equal(decimal.NewFromFloat(0.33)), market.QuoteReserve.String())

	fee, err := svc.Operator().GetAccount(ctx, "1")
	require.NoError(t, err)
	require.True(t, fee.Balance.Equal(decimal.NewFromFloat(0.33)), fee.Balance.String())
}

func TestBookOrderInsufficientFunds(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Hour)
	newEmptyMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(10), "", 0)

	_, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "buy",
		Quantity:  10,
		Price:     decimal.NewFromInt(12),
		Owner:     "alice",
		Execution: "book",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestMarketOrderInsufficientInventory(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Hour)
	info := newAMMMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(1000), "", 0)

	_, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "sell",
		Price:     info.BuyQuote.Price,
		Owner:     "alice",
		Execution: "market",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientInventory)
}

func TestCancelOrderRefundsEscrow(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Hour)
	newEmptyMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(1000), "", 0)

	price := decimal.NewFromInt(12)
	_, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "buy",
		Quantity:  4,
		Price:     price,
		Owner:     "alice",
		Execution: "book",
	})
	require.NoError(t, err)

	alice, err := svc.Operator().GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.True(t, alice.Balance.Equal(decimal.NewFromInt(952)))

	err = svc.Trade().CancelOrder(ctx, application.CancelRequest{
		Ticker:   "ACME",
		Side:     "buy",
		Quantity: 4,
		Price:    price,
		Owner:    "alice",
	})
	require.NoError(t, err)

	alice, err = svc.Operator().GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.True(t, alice.Balance.Equal(decimal.NewFromInt(1000)))

	err = svc.Trade().CancelOrder(ctx, application.CancelRequest{
		Ticker:   "ACME",
		Side:     "buy",
		Quantity: 4,
		Price:    price,
		Owner:    "alice",
	})
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestDelayedRequoteOfOtherSide(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, 50*time.Millisecond)
	info := newAMMMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(1000), "", 0)

	_, err := svc.Trade().PlaceOrder(ctx, application.OrderRequest{
		Ticker:    "ACME",
		Side:      "buy",
		Price:     info.SellQuote.Price,
		Owner:     "alice",
		Execution: "market",
	})
	require.NoError(t, err)

	// fewer shares in the pool push the bid up once the grace window elapses
	require.Eventually(t, func() bool {
		buyBook, err := svc.Trade().GetBook(ctx, "ACME", "buy")
		if err != nil || len(buyBook) != 1 {
			return false
		}
		return buyBook[0].Price.GreaterThan(info.BuyQuote.Price)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestDelayedRequoteSupersededByNewerFill(t *testing.T) {
	t.Parallel()

	const delay = 400 * time.Millisecond

	svc, pubsub := newTestService(t, delay)
	info := newAMMMarket(t, svc)
	newFundedAccount(t, svc, "alice", decimal.NewFromInt(1000), "", 0)

	buyOnce := func() {
		quotes, err := svc.Trade().GetQuotes(ctx, "ACME")
		require.NoError(t, err)
		_, err = svc.Trade().PlaceOrder(ctx, application.OrderRequest{
			Ticker:    "ACME",
			Side:      "buy",
			Price:     *quotes.BuyQuote,
			Owner:     "alice",
			Execution: "market",
		})
		require.NoError(t, err)
	}

	buyOnce()
	time.Sleep(delay / 4)
	buyOnce()

	market, err := svc.Operator().GetMarket(ctx, "ACME")
	require.NoError(t, err)
	require.True(t, market.BuyQuote.Available)

	published := pubsub.count(ports.TopicQuote)
	require.Eventually(t, func() bool {
		return pubsub.count(ports.TopicQuote) > published
	}, 2*time.Second, 20*time.Millisecond)

	// the bid reflects the reserves both fills left behind, not the first
	// fill alone
	buyBook, err := svc.Trade().GetBook(ctx, "ACME", "buy")
	require.NoError(t, err)
	require.Len(t, buyBook, 1)
	require.True(t, buyBook[0].Price.Equal(market.BuyQuote.Price))
	require.True(t, buyBook[0].Price.GreaterThan(info.BuyQuote.Price))

	// the second fill re-armed the pending timer instead of stacking a new
	// one, so exactly one delayed requote fires
	time.Sleep(delay + 100*time.Millisecond)
	require.Equal(t, published+1, pubsub.count(ports.TopicQuote))
}

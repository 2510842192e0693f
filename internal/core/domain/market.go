package domain

import (
	"errors"

	"github.com/shopspring/decimal"

	mm "github.com/stocksim-network/stocksim-daemon/pkg/marketmaking"
	"github.com/stocksim-network/stocksim-daemon/pkg/marketmaking/formula"
	"github.com/stocksim-network/stocksim-daemon/pkg/mathutil"
)

var curve = formula.NewConcentratedLiquidity()

// Quote is one side of the AMM's standing price. A side can be unavailable,
// eg. the ask when the curve holds no shares.
type Quote struct {
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

// Market holds one ticker's AMM state: real reserves, price bounds and the
// derived liquidity constant and quotes. A Market must only ever be mutated
// while holding the ticker's exclusive lock, interleaved mutations corrupt
// the constant-product invariant silently.
type Market struct {
	Ticker string `json:"ticker" badgerhold:"key"`
	// BaseReserve is the real share reserve (x).
	BaseReserve decimal.Decimal `json:"baseReserve"`
	// QuoteReserve is the real cash reserve (y).
	QuoteReserve decimal.Decimal `json:"quoteReserve"`
	// PriceFloor and PriceCeil are the curve's price bounds (Pa, Pb).
	PriceFloor decimal.Decimal `json:"priceFloor"`
	PriceCeil  decimal.Decimal `json:"priceCeil"`
	// Liquidity is the derived liquidity constant (L).
	Liquidity decimal.Decimal `json:"liquidity"`
	// BuyQuote is the AMM's bid, SellQuote its ask, both for exactly 1 share.
	BuyQuote  Quote `json:"buyQuote"`
	SellQuote Quote `json:"sellQuote"`
}

// NewMarket validates bounds and reserves and returns a market with its
// liquidity constant and quotes derived.
func NewMarket(
	ticker string, baseReserve, quoteReserve, priceFloor, priceCeil decimal.Decimal,
) (*Market, error) {
	if ticker == "" {
		return nil, ErrMarketInvalidTicker
	}
	if priceFloor.LessThanOrEqual(decimal.Zero) ||
		priceCeil.LessThanOrEqual(priceFloor) {
		return nil, ErrMarketInvalidBounds
	}
	if baseReserve.IsNegative() || quoteReserve.IsNegative() {
		return nil, ErrMarketInvalidReserves
	}

	market := &Market{
		Ticker:       ticker,
		BaseReserve:  baseReserve,
		QuoteReserve: quoteReserve,
		PriceFloor:   priceFloor,
		PriceCeil:    priceCeil,
	}
	if err := market.Requote(); err != nil {
		return nil, err
	}
	return market, nil
}

// LiquidityProvider returns the counterparty tag of this market's AMM.
func (m *Market) LiquidityProvider() Counterparty {
	return LiquidityProviderCounterparty(m.Ticker)
}

// SpotPrice returns the price implied by the reserve ratio y/x, zero when
// the market holds no shares.
func (m *Market) SpotPrice() decimal.Decimal {
	if m.BaseReserve.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return m.QuoteReserve.Div(m.BaseReserve)
}

// Requote re-derives the liquidity constant and both quotes from the current
// reserves without touching them.
func (m *Market) Requote() error {
	opts := m.formulaOpts()

	liquidity, err := curve.Liquidity(opts)
	if err != nil {
		return err
	}
	m.Liquidity = liquidity

	bid, err := curve.UnitPrice(opts, mm.TradeBuy)
	if err != nil {
		if !isUnavailable(err) {
			return err
		}
		m.BuyQuote = Quote{}
	} else {
		m.BuyQuote = Quote{Price: bid, Available: true}
	}

	ask, err := curve.UnitPrice(opts, mm.TradeSell)
	if err != nil {
		if !isUnavailable(err) {
			return err
		}
		m.SellQuote = Quote{}
	} else {
		m.SellQuote = Quote{Price: ask, Available: true}
	}

	return nil
}

// ApplyTrade moves the reserves by a matched AMM fill (deltaShares is the
// signed share delta, deltaCash the signed cash delta) and re-derives the
// liquidity constant and quotes.
func (m *Market) ApplyTrade(deltaShares int64, deltaCash decimal.Decimal) error {
	newBase := m.BaseReserve.Add(decimal.NewFromInt(deltaShares))
	newQuote := mathutil.RoundMoney(m.QuoteReserve.Add(deltaCash))
	if newBase.IsNegative() || newQuote.IsNegative() {
		return ErrMarketInvalidReserves
	}

	m.BaseReserve = newBase
	m.QuoteReserve = newQuote
	return m.Requote()
}

// CreditReserve adds cash straight to the quote reserve without moving
// shares. Used for the liquidity provider's share of the transaction tax.
func (m *Market) CreditReserve(amount decimal.Decimal) {
	m.QuoteReserve = mathutil.RoundMoney(m.QuoteReserve.Add(amount))
}

func (m *Market) formulaOpts() mm.FormulaOpts {
	return mm.FormulaOpts{
		BaseReserve:  m.BaseReserve,
		QuoteReserve: m.QuoteReserve,
		PriceFloor:   m.PriceFloor,
		PriceCeil:    m.PriceCeil,
	}
}

func isUnavailable(err error) bool {
	return errors.Is(err, formula.ErrEmptyShareReserve) ||
		errors.Is(err, formula.ErrEmptyCashReserve)
}

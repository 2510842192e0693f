package domain

import "strings"

const lpPrefix = "LP-"

// Counterparty identifies who owns an order or receives a settlement leg:
// either a human account or the liquidity provider of a market. The tagged
// form replaces string-prefix inspection everywhere inside the engine; the
// legacy "LP-<ticker>" form survives only as the wire/storage encoding.
type Counterparty struct {
	// User is the account id, empty for a liquidity provider.
	User string `json:"user,omitempty"`
	// LPTicker is the market ticker, set only for a liquidity provider.
	LPTicker string `json:"lpTicker,omitempty"`
}

// HumanCounterparty tags a human account id.
func HumanCounterparty(userID string) Counterparty {
	return Counterparty{User: userID}
}

// LiquidityProviderCounterparty tags the AMM of the given market.
func LiquidityProviderCounterparty(ticker string) Counterparty {
	return Counterparty{LPTicker: ticker}
}

// ParseCounterparty decodes the wire form, accepting the legacy LP prefix.
func ParseCounterparty(raw string) Counterparty {
	if ticker := strings.TrimPrefix(raw, lpPrefix); ticker != raw {
		return LiquidityProviderCounterparty(ticker)
	}
	return HumanCounterparty(raw)
}

// IsLiquidityProvider reports whether the counterparty is a market's AMM.
func (c Counterparty) IsLiquidityProvider() bool {
	return c.LPTicker != ""
}

// String returns the wire form.
func (c Counterparty) String() string {
	if c.IsLiquidityProvider() {
		return lpPrefix + c.LPTicker
	}
	return c.User
}

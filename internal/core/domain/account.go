package domain

import (
	"github.com/shopspring/decimal"

	"github.com/stocksim-network/stocksim-daemon/pkg/mathutil"
)

// Account holds a user's cash balance and per-ticker share inventory. The
// engine only ever applies deltas through the settlement path.
type Account struct {
	ID      string          `json:"id" badgerhold:"key"`
	Balance decimal.Decimal `json:"balance"`
	// Inventory maps ticker to owned share quantity, entries dropped at zero.
	Inventory map[string]int64 `json:"inventory"`
}

// NewAccount returns an account with the given starting balance.
func NewAccount(id string, balance decimal.Decimal) (*Account, error) {
	if id == "" {
		return nil, ErrAccountNotExist
	}
	if balance.IsNegative() {
		return nil, ErrInsufficientFunds
	}
	return &Account{
		ID:        id,
		Balance:   mathutil.RoundMoney(balance),
		Inventory: map[string]int64{},
	}, nil
}

// CreditBalance adds cash to the balance.
func (a *Account) CreditBalance(amount decimal.Decimal) {
	a.Balance = mathutil.RoundMoney(a.Balance.Add(amount))
}

// DebitBalance removes cash from the balance, failing without effect when it
// would go negative.
func (a *Account) DebitBalance(amount decimal.Decimal) error {
	newBalance := mathutil.RoundMoney(a.Balance.Sub(amount))
	if newBalance.IsNegative() {
		return ErrInsufficientFunds
	}
	a.Balance = newBalance
	return nil
}

// InventoryFor returns the owned quantity for a ticker.
func (a *Account) InventoryFor(ticker string) int64 {
	return a.Inventory[ticker]
}

// CreditInventory adds shares of a ticker.
func (a *Account) CreditInventory(ticker string, quantity int64) {
	if a.Inventory == nil {
		a.Inventory = map[string]int64{}
	}
	a.Inventory[ticker] += quantity
}

// DebitInventory removes shares of a ticker, failing without effect when the
// holding does not cover the quantity.
func (a *Account) DebitInventory(ticker string, quantity int64) error {
	held := a.Inventory[ticker]
	if held < quantity {
		return ErrInsufficientInventory
	}
	if held == quantity {
		delete(a.Inventory, ticker)
		return nil
	}
	a.Inventory[ticker] = held - quantity
	return nil
}

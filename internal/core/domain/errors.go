package domain

import "errors"

var (
	// ErrMarketNotExist is thrown when a ticker is not provisioned.
	ErrMarketNotExist = errors.New("market does not exist")
	// ErrMarketInvalidBounds is thrown when Pb does not strictly exceed Pa.
	ErrMarketInvalidBounds = errors.New("market price bounds must satisfy Pb > Pa > 0")
	// ErrMarketInvalidReserves is thrown when a reserve amount is negative.
	ErrMarketInvalidReserves = errors.New("market reserves must not be negative")
	// ErrMarketInvalidTicker ...
	ErrMarketInvalidTicker = errors.New("market ticker must not be empty")
	// ErrAccountNotExist is thrown when a user id is unknown.
	ErrAccountNotExist = errors.New("account does not exist")
	// ErrAccountAlreadyExist ...
	ErrAccountAlreadyExist = errors.New("account already exists")
	// ErrMarketAlreadyExist ...
	ErrMarketAlreadyExist = errors.New("market already exists")
	// ErrInvalidSide ...
	ErrInvalidSide = errors.New("side must be either buy or sell")
	// ErrInvalidExecutionType ...
	ErrInvalidExecutionType = errors.New("execution type must be either market or book")
	// ErrInvalidPrice is thrown when a price is not positive with at most
	// two decimal places.
	ErrInvalidPrice = errors.New("price must be positive with at most 2 decimal places")
	// ErrInvalidQuantity ...
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrInsufficientFunds is thrown before any debit when the balance does
	// not cover the requested amount.
	ErrInsufficientFunds = errors.New("insufficient balance")
	// ErrInsufficientInventory is thrown before any debit when the share
	// inventory does not cover the requested quantity.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrOrderNotFound is thrown when no resting order matches a cancel.
	ErrOrderNotFound = errors.New("no matching resting order")
)

package domain

import "context"

// AccountRepository is the abstraction for any kind of database intended to
// persist Accounts.
type AccountRepository interface {
	// AddAccount adds a new account, failing if the id is taken.
	AddAccount(ctx context.Context, account *Account) error
	// GetAccount returns the account with the given id.
	GetAccount(ctx context.Context, id string) (*Account, error)
	// UpdateAccount commits the changes made by updateFn to the account in
	// an atomic read-modify-write.
	UpdateAccount(
		ctx context.Context, id string,
		updateFn func(a *Account) (*Account, error),
	) error
}

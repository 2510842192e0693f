package inmemory

import (
	"context"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

type accountRepositoryImpl struct {
	store *accountInmemoryStore
}

func (r *accountRepositoryImpl) AddAccount(
	_ context.Context, account *domain.Account,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.accounts[account.ID]; ok {
		return domain.ErrAccountAlreadyExist
	}

	r.store.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (r *accountRepositoryImpl) GetAccount(
	_ context.Context, id string,
) (*domain.Account, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotExist
	}
	return cloneAccount(account), nil
}

func (r *accountRepositoryImpl) UpdateAccount(
	_ context.Context, id string,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	current, ok := r.store.accounts[id]
	if !ok {
		return domain.ErrAccountNotExist
	}

	updated, err := updateFn(cloneAccount(current))
	if err != nil {
		return err
	}

	r.store.accounts[id] = updated
	return nil
}

func cloneAccount(a *domain.Account) *domain.Account {
	clone := *a
	clone.Inventory = make(map[string]int64, len(a.Inventory))
	for ticker, quantity := range a.Inventory {
		clone.Inventory[ticker] = quantity
	}
	return &clone
}

package dbbadger

import (
	"context"
	"errors"
	"sync"

	"github.com/timshannon/badgerhold/v4"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

type accountRepositoryImpl struct {
	store *badgerhold.Store
	// locker serializes read-modify-write cycles across goroutines.
	locker *sync.Mutex
}

func (r *accountRepositoryImpl) AddAccount(
	_ context.Context, account *domain.Account,
) error {
	if err := r.store.Insert(account.ID, account); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrAccountAlreadyExist
		}
		return err
	}
	return nil
}

func (r *accountRepositoryImpl) GetAccount(
	_ context.Context, id string,
) (*domain.Account, error) {
	return r.getAccount(id)
}

func (r *accountRepositoryImpl) UpdateAccount(
	_ context.Context, id string,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	current, err := r.getAccount(id)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	return r.store.Update(id, updated)
}

func (r *accountRepositoryImpl) getAccount(id string) (*domain.Account, error) {
	var account domain.Account
	if err := r.store.Get(id, &account); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrAccountNotExist
		}
		return nil, err
	}
	return &account, nil
}

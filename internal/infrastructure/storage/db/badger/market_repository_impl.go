package dbbadger

import (
	"context"
	"errors"
	"sync"

	"github.com/timshannon/badgerhold/v4"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

type marketRepositoryImpl struct {
	store *badgerhold.Store
	// locker serializes read-modify-write cycles across goroutines.
	locker *sync.Mutex
}

func (r *marketRepositoryImpl) AddMarket(
	_ context.Context, market *domain.Market,
) error {
	if err := r.store.Insert(market.Ticker, market); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrMarketAlreadyExist
		}
		return err
	}
	return nil
}

func (r *marketRepositoryImpl) GetMarket(
	_ context.Context, ticker string,
) (*domain.Market, error) {
	return r.getMarket(ticker)
}

func (r *marketRepositoryImpl) GetAllMarkets(
	_ context.Context,
) ([]domain.Market, error) {
	markets := make([]domain.Market, 0)
	if err := r.store.Find(
		&markets, (&badgerhold.Query{}).SortBy("Ticker"),
	); err != nil {
		return nil, err
	}
	return markets, nil
}

func (r *marketRepositoryImpl) UpdateMarket(
	_ context.Context, ticker string,
	updateFn func(m *domain.Market) (*domain.Market, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	current, err := r.getMarket(ticker)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	return r.store.Update(ticker, updated)
}

func (r *marketRepositoryImpl) getMarket(ticker string) (*domain.Market, error) {
	var market domain.Market
	if err := r.store.Get(ticker, &market); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrMarketNotExist
		}
		return nil, err
	}
	return &market, nil
}

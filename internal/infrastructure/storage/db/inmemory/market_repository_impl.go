package inmemory

import (
	"context"
	"sort"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

type marketRepositoryImpl struct {
	store *marketInmemoryStore
}

func (r *marketRepositoryImpl) AddMarket(
	_ context.Context, market *domain.Market,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.markets[market.Ticker]; ok {
		return domain.ErrMarketAlreadyExist
	}

	clone := *market
	r.store.markets[market.Ticker] = &clone
	return nil
}

func (r *marketRepositoryImpl) GetMarket(
	_ context.Context, ticker string,
) (*domain.Market, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	market, ok := r.store.markets[ticker]
	if !ok {
		return nil, domain.ErrMarketNotExist
	}

	clone := *market
	return &clone, nil
}

func (r *marketRepositoryImpl) GetAllMarkets(
	_ context.Context,
) ([]domain.Market, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	markets := make([]domain.Market, 0, len(r.store.markets))
	for _, market := range r.store.markets {
		markets = append(markets, *market)
	}
	sort.Slice(markets, func(i, j int) bool {
		return markets[i].Ticker < markets[j].Ticker
	})
	return markets, nil
}

func (r *marketRepositoryImpl) UpdateMarket(
	_ context.Context, ticker string,
	updateFn func(m *domain.Market) (*domain.Market, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	current, ok := r.store.markets[ticker]
	if !ok {
		return domain.ErrMarketNotExist
	}

	clone := *current
	updated, err := updateFn(&clone)
	if err != nil {
		return err
	}

	r.store.markets[ticker] = updated
	return nil
}

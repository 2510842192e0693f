package dbbadger

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/timshannon/badgerhold/v4"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

type orderRepositoryImpl struct {
	store *badgerhold.Store
	// locker serializes read-modify-write cycles across goroutines.
	locker *sync.Mutex
}

func bookKey(ticker string, side domain.Side) string {
	return ticker + "/" + side.String()
}

func (r *orderRepositoryImpl) GetBook(
	_ context.Context, ticker string, side domain.Side,
) (*domain.OrderBook, error) {
	return r.getBook(ticker, side)
}

func (r *orderRepositoryImpl) UpdateBook(
	_ context.Context, ticker string, side domain.Side,
	updateFn func(b *domain.OrderBook) (*domain.OrderBook, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	current, err := r.getBook(ticker, side)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	return r.store.Upsert(bookKey(ticker, side), updated)
}

func (r *orderRepositoryImpl) GetOrdersForOwner(
	_ context.Context, owner domain.Counterparty,
) ([]domain.Order, error) {
	books := make([]domain.OrderBook, 0)
	if err := r.store.Find(&books, nil); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0)
	for _, book := range books {
		for _, order := range book.Orders {
			if order.Owner == owner {
				orders = append(orders, order)
			}
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *orderRepositoryImpl) getBook(
	ticker string, side domain.Side,
) (*domain.OrderBook, error) {
	var book domain.OrderBook
	if err := r.store.Get(bookKey(ticker, side), &book); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.NewOrderBook(ticker, side), nil
		}
		return nil, err
	}
	return &book, nil
}

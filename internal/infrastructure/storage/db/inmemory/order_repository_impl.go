package inmemory

import (
	"context"
	"sort"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

type orderRepositoryImpl struct {
	store *orderInmemoryStore
}

func bookKey(ticker string, side domain.Side) string {
	return ticker + "/" + side.String()
}

func (r *orderRepositoryImpl) GetBook(
	_ context.Context, ticker string, side domain.Side,
) (*domain.OrderBook, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.cloneBook(ticker, side), nil
}

func (r *orderRepositoryImpl) UpdateBook(
	_ context.Context, ticker string, side domain.Side,
	updateFn func(b *domain.OrderBook) (*domain.OrderBook, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	updated, err := updateFn(r.cloneBook(ticker, side))
	if err != nil {
		return err
	}

	r.store.books[bookKey(ticker, side)] = updated
	return nil
}

func (r *orderRepositoryImpl) GetOrdersForOwner(
	_ context.Context, owner domain.Counterparty,
) ([]domain.Order, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	orders := make([]domain.Order, 0)
	for _, book := range r.store.books {
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

func (r *orderRepositoryImpl) cloneBook(
	ticker string, side domain.Side,
) *domain.OrderBook {
	book, ok := r.store.books[bookKey(ticker, side)]
	if !ok {
		return domain.NewOrderBook(ticker, side)
	}

	clone := *book
	clone.Orders = make([]domain.Order, len(book.Orders))
	copy(clone.Orders, book.Orders)
	return &clone
}

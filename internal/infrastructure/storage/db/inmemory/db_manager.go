package inmemory

import (
	"sync"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

type marketInmemoryStore struct {
	markets map[string]*domain.Market
	locker  *sync.RWMutex
}

type orderInmemoryStore struct {
	books  map[string]*domain.OrderBook
	locker *sync.RWMutex
}

type accountInmemoryStore struct {
	accounts map[string]*domain.Account
	locker   *sync.RWMutex
}

// DbManager is the in-memory implementation of the repository manager,
// suitable for tests and ephemeral simulations.
type DbManager struct {
	marketStore  *marketInmemoryStore
	orderStore   *orderInmemoryStore
	accountStore *accountInmemoryStore

	marketRepository  *marketRepositoryImpl
	orderRepository   *orderRepositoryImpl
	accountRepository *accountRepositoryImpl
}

// NewRepoManager returns a repo manager backed by plain maps.
func NewRepoManager() *DbManager {
	marketStore := &marketInmemoryStore{
		markets: map[string]*domain.Market{},
		locker:  &sync.RWMutex{},
	}
	orderStore := &orderInmemoryStore{
		books:  map[string]*domain.OrderBook{},
		locker: &sync.RWMutex{},
	}
	accountStore := &accountInmemoryStore{
		accounts: map[string]*domain.Account{},
		locker:   &sync.RWMutex{},
	}

	return &DbManager{
		marketStore:       marketStore,
		orderStore:        orderStore,
		accountStore:      accountStore,
		marketRepository:  &marketRepositoryImpl{marketStore},
		orderRepository:   &orderRepositoryImpl{orderStore},
		accountRepository: &accountRepositoryImpl{accountStore},
	}
}

func (d *DbManager) MarketRepository() domain.MarketRepository {
	return d.marketRepository
}

func (d *DbManager) OrderRepository() domain.OrderRepository {
	return d.orderRepository
}

func (d *DbManager) AccountRepository() domain.AccountRepository {
	return d.accountRepository
}

func (d *DbManager) Close() {}

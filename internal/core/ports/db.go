package ports

import (
	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

// RepoManager gives access to all the storage repositories of the daemon.
type RepoManager interface {
	MarketRepository() domain.MarketRepository
	OrderRepository() domain.OrderRepository
	AccountRepository() domain.AccountRepository
	// Close gracefully closes the connection with the underlying storage.
	Close()
}

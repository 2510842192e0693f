package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"

	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

// DbManager holds all the badgerhold stores in a single data structure.
type DbManager struct {
	marketStore  *badgerhold.Store
	bookStore    *badgerhold.Store
	accountStore *badgerhold.Store

	marketRepository  *marketRepositoryImpl
	orderRepository   *orderRepositoryImpl
	accountRepository *accountRepositoryImpl
}

// NewRepoManager opens (or creates if not exists) the badger stores on disk.
// It expects a base data dir and an optional logger, and creates a dedicated
// directory each for markets, books and accounts.
func NewRepoManager(baseDbDir string, logger badger.Logger) (*DbManager, error) {
	marketDb, err := createDb(baseDbDir+"/market", logger)
	if err != nil {
		return nil, fmt.Errorf("opening market db: %w", err)
	}

	bookDb, err := createDb(baseDbDir+"/book", logger)
	if err != nil {
		return nil, fmt.Errorf("opening book db: %w", err)
	}

	accountDb, err := createDb(baseDbDir+"/account", logger)
	if err != nil {
		return nil, fmt.Errorf("opening account db: %w", err)
	}

	return &DbManager{
		marketStore:       marketDb,
		bookStore:         bookDb,
		accountStore:      accountDb,
		marketRepository:  &marketRepositoryImpl{store: marketDb, locker: &sync.Mutex{}},
		orderRepository:   &orderRepositoryImpl{store: bookDb, locker: &sync.Mutex{}},
		accountRepository: &accountRepositoryImpl{store: accountDb, locker: &sync.Mutex{}},
	}, nil
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

func (d *DbManager) Close() {
	for _, store := range []*badgerhold.Store{
		d.marketStore, d.bookStore, d.accountStore,
	} {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close badger store")
		}
	}
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	var buff bytes.Buffer
	de := json.NewDecoder(&buff)

	_, err := buff.Write(data)
	if err != nil {
		return err
	}

	return de.Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (db *badgerhold.Store, err error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	db, err = badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})

	return
}

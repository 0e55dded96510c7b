package db

import (
	"context"
	"fmt"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
	badgerdb "github.com/ark-network/htlc/internal/infrastructure/db/badger"
	pgdb "github.com/ark-network/htlc/internal/infrastructure/db/postgres"
	sqlitedb "github.com/ark-network/htlc/internal/infrastructure/db/sqlite"
)

// dataStore groups the repositories that must be updated atomically.
type dataStore interface {
	HTLCs() domain.HTLCRepository
	Assets() domain.AssetRepository
	ClaimReceipts() domain.ClaimReceiptRepository
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Close()
}

var (
	eventStoreTypes = map[string]func(...interface{}) (domain.EventRepository, error){
		"badger": badgerdb.NewEventRepository,
	}
	dataStoreTypes = map[string]func(...interface{}) (dataStore, error){
		"badger": func(config ...interface{}) (dataStore, error) {
			return badgerdb.NewDataStore(config...)
		},
		"sqlite": func(config ...interface{}) (dataStore, error) {
			return sqlitedb.NewDataStore(config...)
		},
		"postgres": func(config ...interface{}) (dataStore, error) {
			return pgdb.NewDataStore(config...)
		},
	}
)

type ServiceConfig struct {
	EventStoreType string
	DataStoreType  string

	EventStoreConfig []interface{}
	DataStoreConfig  []interface{}
}

type service struct {
	eventStore domain.EventRepository
	dataStore  dataStore
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	eventStoreFactory, ok := eventStoreTypes[config.EventStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid event store type: %s", config.EventStoreType)
	}
	dataStoreFactory, ok := dataStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	eventStore, err := eventStoreFactory(config.EventStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create event store: %w", err)
	}

	dataStore, err := dataStoreFactory(config.DataStoreConfig...)
	if err != nil {
		eventStore.Close()
		return nil, fmt.Errorf("failed to create data store: %w", err)
	}

	return &service{
		eventStore: eventStore,
		dataStore:  dataStore,
	}, nil
}

func (s *service) Events() domain.EventRepository {
	return s.eventStore
}

func (s *service) HTLCs() domain.HTLCRepository {
	return s.dataStore.HTLCs()
}

func (s *service) Assets() domain.AssetRepository {
	return s.dataStore.Assets()
}

func (s *service) ClaimReceipts() domain.ClaimReceiptRepository {
	return s.dataStore.ClaimReceipts()
}

func (s *service) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.dataStore.RunInTx(ctx, fn)
}

func (s *service) Close() {
	s.eventStore.Close()
	s.dataStore.Close()
}

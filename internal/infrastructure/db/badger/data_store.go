package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const dataStoreDir = "htlcs"

// DataStore keeps htlcs, assets and claim receipts in the same badger
// database so that a single transaction can span all of them.
type DataStore struct {
	store    *badgerhold.Store
	htlcs    domain.HTLCRepository
	assets   domain.AssetRepository
	receipts domain.ClaimReceiptRepository
}

func NewDataStore(config ...interface{}) (*DataStore, error) {
	baseDir, logger, err := parseConfig(config)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, dataStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open htlc store: %s", err)
	}

	return &DataStore{
		store:    store,
		htlcs:    newHTLCRepository(store),
		assets:   newAssetRepository(store),
		receipts: newClaimReceiptRepository(store),
	}, nil
}

func (s *DataStore) HTLCs() domain.HTLCRepository                 { return s.htlcs }
func (s *DataStore) Assets() domain.AssetRepository               { return s.assets }
func (s *DataStore) ClaimReceipts() domain.ClaimReceiptRepository { return s.receipts }

func (s *DataStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.runInTx(ctx, fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		time.Sleep(100 * time.Millisecond)
	}
	return err
}

func (s *DataStore) Close() {
	// nolint:errcheck
	s.store.Close()
}

func (s *DataStore) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := s.store.Badger().NewTransaction(true)
	defer tx.Discard()

	// nolint:staticcheck
	if err := fn(context.WithValue(ctx, "tx", tx)); err != nil {
		return err
	}
	return tx.Commit()
}

package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

type htlcRepository struct {
	store *badgerhold.Store
}

func newHTLCRepository(store *badgerhold.Store) domain.HTLCRepository {
	return &htlcRepository{store}
}

func (r *htlcRepository) AddHTLC(ctx context.Context, htlc domain.HTLC) error {
	return update(ctx, r.store, func(tx *badger.Txn) error {
		if err := r.store.TxInsert(tx, htlc.Id, htlc); err != nil {
			if errors.Is(err, badgerhold.ErrKeyExists) {
				return domain.ErrHTLCAlreadyExists(htlc.Id)
			}
			return fmt.Errorf("failed to insert htlc %s: %w", htlc.Id, err)
		}
		return nil
	})
}

func (r *htlcRepository) UpdateHTLC(
	ctx context.Context, htlc domain.HTLC, expectedStatus domain.HTLCStatus,
) error {
	return update(ctx, r.store, func(tx *badger.Txn) error {
		var current domain.HTLC
		if err := r.store.TxGet(tx, htlc.Id, &current); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrHTLCNotFound(htlc.Id)
			}
			return err
		}
		if current.Status != expectedStatus {
			return domain.ErrHTLCStatusChanged(htlc.Id, expectedStatus, current.Status)
		}
		if err := r.store.TxUpdate(tx, htlc.Id, htlc); err != nil {
			return fmt.Errorf("failed to update htlc %s: %w", htlc.Id, err)
		}
		return nil
	})
}

func (r *htlcRepository) GetHTLC(ctx context.Context, id string) (*domain.HTLC, error) {
	var htlc domain.HTLC
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, id, &htlc)
	} else {
		err = r.store.Get(id, &htlc)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrHTLCNotFound(id)
		}
		return nil, err
	}
	return &htlc, nil
}

func (r *htlcRepository) GetHTLCsWithStatus(
	ctx context.Context, status domain.HTLCStatus,
) ([]domain.HTLC, error) {
	query := badgerhold.Where("Status").Eq(status)
	return r.findHTLCs(ctx, query)
}

func (r *htlcRepository) Close() {}

func (r *htlcRepository) findHTLCs(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.HTLC, error) {
	htlcs := make([]domain.HTLC, 0)
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &htlcs, query)
	} else {
		err = r.store.Find(&htlcs, query)
	}
	return htlcs, err
}

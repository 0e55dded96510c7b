package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

type assetRepository struct {
	store *badgerhold.Store
}

func newAssetRepository(store *badgerhold.Store) domain.AssetRepository {
	return &assetRepository{store}
}

func (r *assetRepository) AddOrUpdateAsset(ctx context.Context, asset domain.Asset) error {
	return update(ctx, r.store, func(tx *badger.Txn) error {
		if err := r.store.TxUpsert(tx, asset.Key(), asset); err != nil {
			return fmt.Errorf("failed to upsert asset %s: %w", asset.Key(), err)
		}
		return nil
	})
}

func (r *assetRepository) GetAsset(
	ctx context.Context, assetType, id string,
) (*domain.Asset, error) {
	key := domain.Asset{Type: assetType, Id: id}.Key()

	var asset domain.Asset
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &asset)
	} else {
		err = r.store.Get(key, &asset)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrAssetNotFound(key)
		}
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) Close() {}

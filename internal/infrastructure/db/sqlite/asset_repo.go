package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/infrastructure/db/sqlite/sqlc/queries"
)

type assetRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewAssetRepository(config ...interface{}) (domain.AssetRepository, error) {
	db, err := parseConfig(config)
	if err != nil {
		return nil, fmt.Errorf("cannot open asset repository: %s", err)
	}
	return &assetRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *assetRepository) AddOrUpdateAsset(ctx context.Context, asset domain.Asset) error {
	txBody := func(querierWithTx *queries.Queries) error {
		if err := querierWithTx.UpsertAsset(ctx, queries.UpsertAssetParams{
			Type:      asset.Type,
			ID:        asset.Id,
			Fungible:  asset.Fungible,
			Quantity:  int64(asset.Quantity),
			LockedBy:  asset.LockedBy,
			UpdatedAt: asset.UpdatedAt,
		}); err != nil {
			return fmt.Errorf("failed to upsert asset %s: %w", asset.Key(), err)
		}

		if err := querierWithTx.DeleteAssetOwners(ctx, queries.DeleteAssetOwnersParams{
			AssetType: asset.Type,
			AssetID:   asset.Id,
		}); err != nil {
			return err
		}
		for _, owner := range asset.OwnerSet().Sorted() {
			if err := querierWithTx.InsertAssetOwner(ctx, queries.InsertAssetOwnerParams{
				AssetType: asset.Type,
				AssetID:   asset.Id,
				Party:     owner,
			}); err != nil {
				return fmt.Errorf("failed to insert owner %s of asset %s: %w", owner, asset.Key(), err)
			}
		}
		return nil
	}

	return write(ctx, r.db, r.querier, txBody)
}

func (r *assetRepository) GetAsset(
	ctx context.Context, assetType, id string,
) (*domain.Asset, error) {
	querier := querierFor(ctx, r.querier)

	row, err := querier.SelectAsset(ctx, queries.SelectAssetParams{Type: assetType, ID: id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssetNotFound(domain.Asset{Type: assetType, Id: id}.Key())
		}
		return nil, err
	}
	owners, err := querier.SelectAssetOwners(ctx, queries.SelectAssetOwnersParams{
		AssetType: assetType,
		AssetID:   id,
	})
	if err != nil {
		return nil, err
	}

	return &domain.Asset{
		Type:      row.Type,
		Id:        row.ID,
		Fungible:  row.Fungible,
		Quantity:  uint64(row.Quantity),
		Owners:    owners,
		LockedBy:  row.LockedBy,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *assetRepository) Close() {
	_ = r.db.Close()
}

package pgdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ark-network/htlc/internal/core/domain"
)

// DataStore groups the repositories sharing the same postgres database.
type DataStore struct {
	db       *sql.DB
	htlcs    domain.HTLCRepository
	assets   domain.AssetRepository
	receipts domain.ClaimReceiptRepository
}

func NewDataStore(config ...interface{}) (*DataStore, error) {
	db, err := parseConfig(config)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	htlcs, err := NewHTLCRepository(db)
	if err != nil {
		return nil, err
	}
	assets, err := NewAssetRepository(db)
	if err != nil {
		return nil, err
	}
	receipts, err := NewClaimReceiptRepository(db)
	if err != nil {
		return nil, err
	}
	return &DataStore{db, htlcs, assets, receipts}, nil
}

func (s *DataStore) HTLCs() domain.HTLCRepository                 { return s.htlcs }
func (s *DataStore) Assets() domain.AssetRepository               { return s.assets }
func (s *DataStore) ClaimReceipts() domain.ClaimReceiptRepository { return s.receipts }

func (s *DataStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			// nolint:errcheck
			tx.Rollback()
			panic(p)
		}
	}()

	// nolint:staticcheck
	if err := fn(context.WithValue(ctx, "tx", tx)); err != nil {
		// nolint:errcheck
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *DataStore) Close() {
	_ = s.db.Close()
}

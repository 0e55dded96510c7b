package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

type claimReceiptRepository struct {
	store *badgerhold.Store
}

func newClaimReceiptRepository(store *badgerhold.Store) domain.ClaimReceiptRepository {
	return &claimReceiptRepository{store}
}

func (r *claimReceiptRepository) AddClaimReceipt(
	ctx context.Context, receipt domain.ClaimReceipt,
) error {
	return update(ctx, r.store, func(tx *badger.Txn) error {
		err := r.store.TxInsert(tx, receipt.Key(), receipt)
		if err != nil && !errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("failed to insert claim receipt %s: %w", receipt.Key(), err)
		}
		return nil
	})
}

func (r *claimReceiptRepository) GetClaimReceipts(
	ctx context.Context, recordId string,
) ([]domain.ClaimReceipt, error) {
	query := badgerhold.Where("RecordId").Eq(recordId)

	receipts := make([]domain.ClaimReceipt, 0)
	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &receipts, query)
	} else {
		err = r.store.Find(&receipts, query)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		if receipts[i].CreatedAt == receipts[j].CreatedAt {
			return receipts[i].Party < receipts[j].Party
		}
		return receipts[i].CreatedAt < receipts[j].CreatedAt
	})
	return receipts, nil
}

func (r *claimReceiptRepository) Close() {}

package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/infrastructure/db/sqlite/sqlc/queries"
)

type claimReceiptRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewClaimReceiptRepository(config ...interface{}) (domain.ClaimReceiptRepository, error) {
	db, err := parseConfig(config)
	if err != nil {
		return nil, fmt.Errorf("cannot open claim receipt repository: %s", err)
	}
	return &claimReceiptRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *claimReceiptRepository) AddClaimReceipt(
	ctx context.Context, receipt domain.ClaimReceipt,
) error {
	return querierFor(ctx, r.querier).InsertClaimReceipt(ctx, queries.InsertClaimReceiptParams{
		TxID:      receipt.TxId,
		Party:     receipt.Party,
		RecordID:  receipt.RecordId,
		Preimage:  receipt.Preimage,
		CreatedAt: receipt.CreatedAt,
	})
}

func (r *claimReceiptRepository) GetClaimReceipts(
	ctx context.Context, recordId string,
) ([]domain.ClaimReceipt, error) {
	rows, err := querierFor(ctx, r.querier).SelectClaimReceipts(ctx, recordId)
	if err != nil {
		return nil, err
	}
	receipts := make([]domain.ClaimReceipt, 0, len(rows))
	for _, row := range rows {
		receipts = append(receipts, domain.ClaimReceipt{
			TxId:      row.TxID,
			RecordId:  row.RecordID,
			Party:     row.Party,
			Preimage:  row.Preimage,
			CreatedAt: row.CreatedAt,
		})
	}
	return receipts, nil
}

func (r *claimReceiptRepository) Close() {
	_ = r.db.Close()
}

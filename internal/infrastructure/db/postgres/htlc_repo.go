package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/infrastructure/db/postgres/sqlc/queries"
)

const (
	roleLocker    = "locker"
	roleRecipient = "recipient"
	roleObserver  = "observer"
)

type htlcRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewHTLCRepository(config ...interface{}) (domain.HTLCRepository, error) {
	db, err := parseConfig(config)
	if err != nil {
		return nil, fmt.Errorf("cannot open htlc repository: %s", err)
	}
	return &htlcRepository{
		db:      db,
		querier: queries.New(db),
	}, nil
}

func (r *htlcRepository) AddHTLC(ctx context.Context, htlc domain.HTLC) error {
	txBody := func(querierWithTx *queries.Queries) error {
		if _, err := querierWithTx.SelectHTLC(ctx, htlc.Id); err == nil {
			return domain.ErrHTLCAlreadyExists(htlc.Id)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if err := querierWithTx.InsertHTLC(ctx, queries.InsertHTLCParams{
			ID:            htlc.Id,
			Hash:          htlc.Hash,
			Expiry:        htlc.Expiry.UnixNano(),
			Issuer:        htlc.Issuer,
			AssetType:     htlc.Asset.Type,
			AssetID:       htlc.Asset.Id,
			AssetQuantity: int64(htlc.Asset.Quantity),
			Status:        int64(htlc.Status),
			LockTxRef:     htlc.LockTxRef,
			ClaimTxRef:    htlc.ClaimTxRef,
			UnlockTxRef:   htlc.UnlockTxRef,
			Preimage:      htlc.Preimage,
			CreatedAt:     htlc.CreatedAt,
			UpdatedAt:     htlc.UpdatedAt,
			Version:       int64(htlc.Version),
		}); err != nil {
			return fmt.Errorf("failed to insert htlc %s: %w", htlc.Id, err)
		}

		parties := map[string][]string{
			roleLocker:    htlc.Lockers,
			roleRecipient: htlc.Recipients,
			roleObserver:  htlc.Observers,
		}
		for role, members := range parties {
			for _, party := range members {
				if err := querierWithTx.InsertHTLCParty(ctx, queries.InsertHTLCPartyParams{
					HtlcID: htlc.Id,
					Party:  party,
					Role:   role,
				}); err != nil {
					return fmt.Errorf("failed to insert %s %s of htlc %s: %w", role, party, htlc.Id, err)
				}
			}
		}
		return nil
	}

	return write(ctx, r.db, r.querier, txBody)
}

func (r *htlcRepository) UpdateHTLC(
	ctx context.Context, htlc domain.HTLC, expectedStatus domain.HTLCStatus,
) error {
	txBody := func(querierWithTx *queries.Queries) error {
		rows, err := querierWithTx.UpdateHTLCWithStatus(ctx, queries.UpdateHTLCWithStatusParams{
			Status:         int64(htlc.Status),
			ClaimTxRef:     htlc.ClaimTxRef,
			UnlockTxRef:    htlc.UnlockTxRef,
			Preimage:       htlc.Preimage,
			UpdatedAt:      htlc.UpdatedAt,
			Version:        int64(htlc.Version),
			ID:             htlc.Id,
			ExpectedStatus: int64(expectedStatus),
		})
		if err != nil {
			return fmt.Errorf("failed to update htlc %s: %w", htlc.Id, err)
		}
		if rows > 0 {
			return nil
		}

		current, err := querierWithTx.SelectHTLC(ctx, htlc.Id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrHTLCNotFound(htlc.Id)
			}
			return err
		}
		return domain.ErrHTLCStatusChanged(
			htlc.Id, expectedStatus, domain.HTLCStatus(current.Status),
		)
	}

	return write(ctx, r.db, r.querier, txBody)
}

func (r *htlcRepository) GetHTLC(ctx context.Context, id string) (*domain.HTLC, error) {
	querier := querierFor(ctx, r.querier)

	row, err := querier.SelectHTLC(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHTLCNotFound(id)
		}
		return nil, err
	}
	return r.toHTLC(ctx, querier, row)
}

func (r *htlcRepository) GetHTLCsWithStatus(
	ctx context.Context, status domain.HTLCStatus,
) ([]domain.HTLC, error) {
	querier := querierFor(ctx, r.querier)

	rows, err := querier.SelectHTLCsWithStatus(ctx, int64(status))
	if err != nil {
		return nil, err
	}

	htlcs := make([]domain.HTLC, 0, len(rows))
	for _, row := range rows {
		htlc, err := r.toHTLC(ctx, querier, row)
		if err != nil {
			return nil, err
		}
		htlcs = append(htlcs, *htlc)
	}
	return htlcs, nil
}

func (r *htlcRepository) Close() {
	_ = r.db.Close()
}

func (r *htlcRepository) toHTLC(
	ctx context.Context, querier *queries.Queries, row queries.Htlc,
) (*domain.HTLC, error) {
	parties, err := querier.SelectHTLCParties(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	htlc := &domain.HTLC{
		Id:     row.ID,
		Hash:   row.Hash,
		Expiry: time.Unix(0, row.Expiry).UTC(),
		Issuer: row.Issuer,
		Asset: domain.AssetRef{
			Type:     row.AssetType,
			Id:       row.AssetID,
			Quantity: uint64(row.AssetQuantity),
		},
		Status:      domain.HTLCStatus(row.Status),
		LockTxRef:   row.LockTxRef,
		ClaimTxRef:  row.ClaimTxRef,
		UnlockTxRef: row.UnlockTxRef,
		Preimage:    row.Preimage,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Version:     uint(row.Version),
	}
	for _, p := range parties {
		switch p.Role {
		case roleLocker:
			htlc.Lockers = append(htlc.Lockers, p.Party)
		case roleRecipient:
			htlc.Recipients = append(htlc.Recipients, p.Party)
		case roleObserver:
			htlc.Observers = append(htlc.Observers, p.Party)
		}
	}
	return htlc, nil
}

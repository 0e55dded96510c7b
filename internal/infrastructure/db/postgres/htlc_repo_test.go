package pgdb_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ark-network/htlc/internal/core/domain"
	pgdb "github.com/ark-network/htlc/internal/infrastructure/db/postgres"
	"github.com/stretchr/testify/require"
)

const recordId = "2bb80d53_8c2ac0a4-0a88-4a5c-9e3c-5d4b0a0e9d11"

var htlcColumns = []string{
	"id", "hash", "expiry", "issuer", "asset_type", "asset_id", "asset_quantity", "status",
	"lock_tx_ref", "claim_tx_ref", "unlock_tx_ref", "preimage", "created_at", "updated_at",
	"version",
}

func TestUpdateHTLC(t *testing.T) {
	ctx := context.Background()
	expiry := time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC)
	claimed := domain.HTLC{
		Id:         recordId,
		Hash:       []byte("hash"),
		Expiry:     expiry,
		Issuer:     "issuer",
		Asset:      domain.AssetRef{Type: "bond", Id: "A001"},
		Status:     domain.HTLCClaimedStatus,
		LockTxRef:  "lock",
		ClaimTxRef: "claim",
		Preimage:   []byte("secret"),
		UpdatedAt:  1717243260,
	}
	updateQuery := regexp.QuoteMeta("UPDATE htlc SET")
	selectQuery := regexp.QuoteMeta("FROM htlc WHERE id = $1")

	t.Run("valid", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo, err := pgdb.NewHTLCRepository(db)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(updateQuery).
			WithArgs(
				int64(domain.HTLCClaimedStatus), "claim", "", []byte("secret"),
				int64(1717243260), int64(0), recordId, int64(domain.HTLCLockedStatus),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.UpdateHTLC(ctx, claimed, domain.HTLCLockedStatus)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name        string
			setup       func(mock sqlmock.Sqlmock)
			expectedErr error
		}{
			{
				name: "status changed",
				setup: func(mock sqlmock.Sqlmock) {
					mock.ExpectBegin()
					mock.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewResult(0, 0))
					mock.ExpectQuery(selectQuery).
						WithArgs(recordId).
						WillReturnRows(sqlmock.NewRows(htlcColumns).AddRow(
							recordId, []byte("hash"), expiry.UnixNano(), "issuer", "bond",
							"A001", 0, int64(domain.HTLCReclaimedStatus), "lock", "", "unlock",
							nil, 1717243200, 1717243600, 0,
						))
					mock.ExpectRollback()
				},
				expectedErr: domain.ErrAlreadyTerminal,
			},
			{
				name: "not found",
				setup: func(mock sqlmock.Sqlmock) {
					mock.ExpectBegin()
					mock.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewResult(0, 0))
					mock.ExpectQuery(selectQuery).
						WithArgs(recordId).
						WillReturnError(sql.ErrNoRows)
					mock.ExpectRollback()
				},
				expectedErr: domain.ErrNotFound,
			},
		}

		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer db.Close()

				repo, err := pgdb.NewHTLCRepository(db)
				require.NoError(t, err)

				f.setup(mock)

				err = repo.UpdateHTLC(ctx, claimed, domain.HTLCLockedStatus)
				require.ErrorIs(t, err, f.expectedErr)
				require.NoError(t, mock.ExpectationsWereMet())
			})
		}
	})
}

func TestGetHTLC(t *testing.T) {
	ctx := context.Background()
	expiry := time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo, err := pgdb.NewHTLCRepository(db)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM htlc WHERE id = $1")).
		WithArgs(recordId).
		WillReturnRows(sqlmock.NewRows(htlcColumns).AddRow(
			recordId, []byte("hash"), expiry.UnixNano(), "issuer", "token", "T1", 40,
			int64(domain.HTLCLockedStatus), "lock", "", "", nil, 1717243200, 1717243200, 1,
		))
	mock.ExpectQuery(regexp.QuoteMeta("FROM htlc_party WHERE htlc_id = $1")).
		WithArgs(recordId).
		WillReturnRows(sqlmock.NewRows([]string{"party", "role"}).
			AddRow("alice", "locker").
			AddRow("auditor", "observer").
			AddRow("bob", "recipient"))

	htlc, err := repo.GetHTLC(ctx, recordId)
	require.NoError(t, err)
	require.NotNil(t, htlc)
	require.Equal(t, recordId, htlc.Id)
	require.True(t, expiry.Equal(htlc.Expiry))
	require.Equal(t, domain.AssetRef{Type: "token", Id: "T1", Quantity: 40}, htlc.Asset)
	require.Equal(t, domain.HTLCLockedStatus, htlc.Status)
	require.Equal(t, []string{"alice"}, htlc.Lockers)
	require.Equal(t, []string{"bob"}, htlc.Recipients)
	require.Equal(t, []string{"auditor"}, htlc.Observers)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(regexp.QuoteMeta("FROM htlc WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	htlc, err = repo.GetHTLC(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Nil(t, htlc)
}

func TestGetAsset(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo, err := pgdb.NewAssetRepository(db)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM asset WHERE type = $1 AND id = $2")).
		WithArgs("bond", "A001").
		WillReturnRows(sqlmock.NewRows(
			[]string{"type", "id", "fungible", "quantity", "locked_by", "updated_at"},
		).AddRow("bond", "A001", false, 0, "", 1717243200))
	mock.ExpectQuery(regexp.QuoteMeta("FROM asset_owner WHERE asset_type = $1 AND asset_id = $2")).
		WithArgs("bond", "A001").
		WillReturnRows(sqlmock.NewRows([]string{"party"}).AddRow("alice").AddRow("carol"))

	asset, err := repo.GetAsset(ctx, "bond", "A001")
	require.NoError(t, err)
	require.Equal(t, "bond:A001", asset.Key())
	require.True(t, asset.IsOwnedExclusivelyBy(domain.NewPartySet("alice", "carol")))
	require.False(t, asset.IsLocked())
	require.NoError(t, mock.ExpectationsWereMet())
}

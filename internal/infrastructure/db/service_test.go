package db_test

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/ark-network/htlc/internal/infrastructure/db"
	sqlitedb "github.com/ark-network/htlc/internal/infrastructure/db/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	now    = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	expiry = now.Add(5 * time.Minute)
	hash   = func() []byte {
		h := sha256.Sum256([]byte("secret"))
		return h[:]
	}()
)

func TestService(t *testing.T) {
	sqliteDb, err := sqlitedb.OpenDb(filepath.Join(t.TempDir(), "sqlite.db"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		config db.ServiceConfig
	}{
		{
			name: "repo_manager_with_badger_stores",
			config: db.ServiceConfig{
				EventStoreType:   "badger",
				DataStoreType:    "badger",
				EventStoreConfig: []interface{}{"", nil},
				DataStoreConfig:  []interface{}{"", nil},
			},
		},
		{
			name: "repo_manager_with_sqlite_stores",
			config: db.ServiceConfig{
				EventStoreType:   "badger",
				DataStoreType:    "sqlite",
				EventStoreConfig: []interface{}{"", nil},
				DataStoreConfig:  []interface{}{sqliteDb},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := db.NewService(tt.config)
			require.NoError(t, err)
			defer svc.Close()

			testEventRepository(t, svc)
			testHTLCRepository(t, svc)
			testAssetRepository(t, svc)
			testClaimReceiptRepository(t, svc)
			testRunInTx(t, svc)
		})
	}

	t.Run("invalid store type", func(t *testing.T) {
		_, err := db.NewService(db.ServiceConfig{
			EventStoreType: "badger",
			DataStoreType:  "mongo",
		})
		require.Error(t, err)

		_, err = db.NewService(db.ServiceConfig{
			EventStoreType: "sqlite",
			DataStoreType:  "badger",
		})
		require.Error(t, err)
	})
}

func testEventRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_event_repository", func(t *testing.T) {
		ctx := context.Background()
		id := newRecordId()

		var (
			lock     sync.Mutex
			received []domain.Event
		)
		svc.Events().RegisterEventsHandler(domain.HTLCTopic, func(events []domain.Event) {
			lock.Lock()
			defer lock.Unlock()
			received = append(received, events...)
		})
		defer svc.Events().ClearRegisteredHandlers(domain.HTLCTopic)

		htlc := lockedHTLC(t, id)
		events := htlc.Events()
		err := svc.Events().Save(ctx, domain.HTLCTopic, id, events)
		require.NoError(t, err)

		_, err = htlc.Claim([]byte("secret"), "bob", "claim-tx", now.Add(time.Minute))
		require.NoError(t, err)
		err = svc.Events().Save(ctx, domain.HTLCTopic, id, htlc.Events()[1:])
		require.NoError(t, err)

		loaded, err := svc.Events().Load(ctx, domain.HTLCTopic, id)
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		require.IsType(t, domain.HTLCLocked{}, loaded[0])
		require.IsType(t, domain.HTLCClaimed{}, loaded[1])

		replayed := domain.NewHTLCFromEvents(loaded)
		require.True(t, replayed.IsClaimed())
		require.Equal(t, []byte("secret"), replayed.Preimage)
		require.True(t, expiry.Equal(replayed.Expiry))

		require.Eventually(t, func() bool {
			lock.Lock()
			defer lock.Unlock()
			return len(received) == 2
		}, 2*time.Second, 10*time.Millisecond)

		_, err = svc.Events().Load(ctx, domain.HTLCTopic, newRecordId())
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func testHTLCRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_htlc_repository", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.HTLCs()
		id := newRecordId()

		htlc, err := repo.GetHTLC(ctx, id)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.Nil(t, htlc)

		locked := lockedHTLC(t, id)
		err = repo.AddHTLC(ctx, *locked)
		require.NoError(t, err)

		err = repo.AddHTLC(ctx, *locked)
		require.ErrorIs(t, err, domain.ErrInvalidArgument)

		got, err := repo.GetHTLC(ctx, id)
		require.NoError(t, err)
		requireSameHTLC(t, *locked, *got)

		lockedOnes, err := repo.GetHTLCsWithStatus(ctx, domain.HTLCLockedStatus)
		require.NoError(t, err)
		require.True(t, containsHTLC(lockedOnes, id))

		claimed := *got
		_, err = claimed.Claim([]byte("secret"), "bob", "claim-tx", now.Add(time.Minute))
		require.NoError(t, err)

		err = repo.UpdateHTLC(ctx, claimed, domain.HTLCLockedStatus)
		require.NoError(t, err)

		// The record is not LOCKED anymore, a concurrent unlock must fail.
		reclaimed := *got
		_, err = reclaimed.Unlock("alice", "unlock-tx", expiry.Add(time.Second))
		require.NoError(t, err)
		err = repo.UpdateHTLC(ctx, reclaimed, domain.HTLCLockedStatus)
		require.ErrorIs(t, err, domain.ErrAlreadyTerminal)

		got, err = repo.GetHTLC(ctx, id)
		require.NoError(t, err)
		requireSameHTLC(t, claimed, *got)

		claimedOnes, err := repo.GetHTLCsWithStatus(ctx, domain.HTLCClaimedStatus)
		require.NoError(t, err)
		require.True(t, containsHTLC(claimedOnes, id))

		lockedOnes, err = repo.GetHTLCsWithStatus(ctx, domain.HTLCLockedStatus)
		require.NoError(t, err)
		require.False(t, containsHTLC(lockedOnes, id))

		missing := *locked
		missing.Id = newRecordId()
		err = repo.UpdateHTLC(ctx, missing, domain.HTLCLockedStatus)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func testAssetRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_asset_repository", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.Assets()
		assetId := uuid.New().String()

		asset, err := repo.GetAsset(ctx, "bond", assetId)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.Nil(t, asset)

		bond := domain.Asset{
			Type:      "bond",
			Id:        assetId,
			Owners:    []string{"carol", "alice"},
			UpdatedAt: now.Unix(),
		}
		err = repo.AddOrUpdateAsset(ctx, bond)
		require.NoError(t, err)

		asset, err = repo.GetAsset(ctx, "bond", assetId)
		require.NoError(t, err)
		require.Equal(t, bond.Key(), asset.Key())
		require.True(t, asset.IsOwnedExclusivelyBy(domain.NewPartySet("alice", "carol")))
		require.False(t, asset.IsLocked())

		err = asset.Lock(newRecordId(), now.Unix())
		require.NoError(t, err)
		err = repo.AddOrUpdateAsset(ctx, *asset)
		require.NoError(t, err)

		locked, err := repo.GetAsset(ctx, "bond", assetId)
		require.NoError(t, err)
		require.True(t, locked.IsLocked())
		require.Equal(t, asset.LockedBy, locked.LockedBy)

		err = locked.TransferOwnership(locked.LockedBy, domain.NewPartySet("bob"), now.Unix())
		require.NoError(t, err)
		err = repo.AddOrUpdateAsset(ctx, *locked)
		require.NoError(t, err)

		transferred, err := repo.GetAsset(ctx, "bond", assetId)
		require.NoError(t, err)
		require.False(t, transferred.IsLocked())
		require.True(t, transferred.IsOwnedExclusivelyBy(domain.NewPartySet("bob")))

		token := domain.Asset{
			Type:     "token",
			Id:       assetId,
			Fungible: true,
			Quantity: 100,
			Owners:   []string{"alice"},
		}
		err = repo.AddOrUpdateAsset(ctx, token)
		require.NoError(t, err)

		got, err := repo.GetAsset(ctx, "token", assetId)
		require.NoError(t, err)
		require.True(t, got.Fungible)
		require.Equal(t, uint64(100), got.Quantity)
	})
}

func testClaimReceiptRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_claim_receipt_repository", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.ClaimReceipts()
		id := newRecordId()

		receipts, err := repo.GetClaimReceipts(ctx, id)
		require.NoError(t, err)
		require.Empty(t, receipts)

		receipt := domain.ClaimReceipt{
			TxId:      "claim-tx",
			RecordId:  id,
			Party:     "alice",
			Preimage:  []byte("secret"),
			CreatedAt: now.Unix(),
		}
		err = repo.AddClaimReceipt(ctx, receipt)
		require.NoError(t, err)
		err = repo.AddClaimReceipt(ctx, receipt)
		require.NoError(t, err)

		other := receipt
		other.Party = "carol"
		err = repo.AddClaimReceipt(ctx, other)
		require.NoError(t, err)

		receipts, err = repo.GetClaimReceipts(ctx, id)
		require.NoError(t, err)
		require.Len(t, receipts, 2)
		require.Equal(t, "alice", receipts[0].Party)
		require.Equal(t, "carol", receipts[1].Party)
		require.Equal(t, []byte("secret"), receipts[0].Preimage)
	})
}

func testRunInTx(t *testing.T, svc ports.RepoManager) {
	t.Run("test_run_in_tx", func(t *testing.T) {
		ctx := context.Background()

		t.Run("rollback", func(t *testing.T) {
			id := newRecordId()
			assetId := uuid.New().String()

			err := svc.RunInTx(ctx, func(ctx context.Context) error {
				if err := svc.Assets().AddOrUpdateAsset(ctx, domain.Asset{
					Type: "bond", Id: assetId, Owners: []string{"alice"},
				}); err != nil {
					return err
				}
				if err := svc.HTLCs().AddHTLC(ctx, *lockedHTLC(t, id)); err != nil {
					return err
				}
				return fmt.Errorf("boom")
			})
			require.EqualError(t, err, "boom")

			_, err = svc.HTLCs().GetHTLC(ctx, id)
			require.ErrorIs(t, err, domain.ErrNotFound)
			_, err = svc.Assets().GetAsset(ctx, "bond", assetId)
			require.ErrorIs(t, err, domain.ErrNotFound)
		})

		t.Run("commit", func(t *testing.T) {
			id := newRecordId()
			assetId := uuid.New().String()

			err := svc.RunInTx(ctx, func(ctx context.Context) error {
				if err := svc.Assets().AddOrUpdateAsset(ctx, domain.Asset{
					Type: "bond", Id: assetId, Owners: []string{"alice"}, LockedBy: id,
				}); err != nil {
					return err
				}
				if err := svc.HTLCs().AddHTLC(ctx, *lockedHTLC(t, id)); err != nil {
					return err
				}
				// Reads within the transaction see its own writes.
				_, err := svc.HTLCs().GetHTLC(ctx, id)
				return err
			})
			require.NoError(t, err)

			_, err = svc.HTLCs().GetHTLC(ctx, id)
			require.NoError(t, err)
			asset, err := svc.Assets().GetAsset(ctx, "bond", assetId)
			require.NoError(t, err)
			require.Equal(t, id, asset.LockedBy)
		})
	})
}

func lockedHTLC(t *testing.T, id string) *domain.HTLC {
	htlc := domain.NewHTLC()
	_, err := htlc.Lock(
		id, hash, expiry, domain.NewPartySet("alice"), domain.NewPartySet("bob"),
		"issuer", domain.NewPartySet("auditor"),
		domain.AssetRef{Type: "bond", Id: "A001"}, "lock-tx", now,
	)
	require.NoError(t, err)
	return htlc
}

func requireSameHTLC(t *testing.T, expected, got domain.HTLC) {
	require.Equal(t, expected.Id, got.Id)
	require.Equal(t, expected.Hash, got.Hash)
	require.True(t, expected.Expiry.Equal(got.Expiry))
	require.Equal(t, expected.Issuer, got.Issuer)
	require.Equal(t, expected.Asset, got.Asset)
	require.Equal(t, expected.Status, got.Status)
	require.Equal(t, expected.LockTxRef, got.LockTxRef)
	require.Equal(t, expected.ClaimTxRef, got.ClaimTxRef)
	require.Equal(t, expected.UnlockTxRef, got.UnlockTxRef)
	require.Equal(t, len(expected.Preimage), len(got.Preimage))
	require.True(t, expected.LockerSet().Equals(got.LockerSet()))
	require.True(t, expected.RecipientSet().Equals(got.RecipientSet()))
	require.True(t, expected.ObserverSet().Equals(got.ObserverSet()))
}

func containsHTLC(htlcs []domain.HTLC, id string) bool {
	for _, htlc := range htlcs {
		if htlc.Id == id {
			return true
		}
	}
	return false
}

func newRecordId() string {
	return domain.NewRecordId("test").String()
}

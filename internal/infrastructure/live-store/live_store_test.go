package livestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
	inmemory "github.com/ark-network/htlc/internal/infrastructure/live-store/inmemory"
	redislivestore "github.com/ark-network/htlc/internal/infrastructure/live-store/redis"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLiveStoreImplementations(t *testing.T) {
	stores := []struct {
		name  string
		store func(t *testing.T) ports.LiveStore
	}{
		{"inmemory", func(t *testing.T) ports.LiveStore { return inmemory.NewLiveStore() }},
		{"redis", func(t *testing.T) ports.LiveStore {
			redisOpts, err := redis.ParseURL("redis://localhost:6379/0")
			require.NoError(t, err)
			rdb := redis.NewClient(redisOpts)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				t.Skipf("redis not reachable: %s", err)
			}
			t.Cleanup(func() { _ = rdb.Close() })
			return redislivestore.NewLiveStore(rdb, 5)
		}},
	}

	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			runLiveStoreTests(t, tt.store(t))
		})
	}
}

func runLiveStoreTests(t *testing.T, store ports.LiveStore) {
	ctx := context.Background()
	payload := []byte(`{"kind":"LOCK"}`)
	signers := []string{"alice", "bob", "issuer"}

	t.Run("SigningSessionsStore", func(t *testing.T) {
		t.Run("all signed", func(t *testing.T) {
			sessions := store.SigningSessions()
			sessionId := uuid.New().String()

			session, err := sessions.New(ctx, sessionId, payload, signers)
			require.NoError(t, err)
			require.NotNil(t, session)
			require.Equal(t, signers, session.Signers)
			defer sessions.Delete(ctx, sessionId)

			_, err = sessions.New(ctx, sessionId, payload, signers)
			require.Error(t, err)

			err = sessions.AddSignature(ctx, sessionId, "mallory", []byte("sig"))
			require.Error(t, err)

			for _, signer := range signers {
				err := sessions.AddSignature(ctx, sessionId, signer, []byte("sig-"+signer))
				require.NoError(t, err)
			}

			select {
			case <-sessions.Done(sessionId):
			case <-time.After(2 * time.Second):
				t.Fatal("session not done")
			}

			got, ok := sessions.Get(ctx, sessionId)
			require.True(t, ok)
			require.Equal(t, payload, got.Payload)
			require.True(t, got.AllSigned())
			require.Nil(t, got.Rejection)
			require.Equal(t, []byte("sig-bob"), got.Signatures["bob"])
		})

		t.Run("rejected", func(t *testing.T) {
			sessions := store.SigningSessions()
			sessionId := uuid.New().String()

			_, err := sessions.New(ctx, sessionId, payload, signers)
			require.NoError(t, err)
			defer sessions.Delete(ctx, sessionId)

			err = sessions.AddSignature(ctx, sessionId, "alice", []byte("sig"))
			require.NoError(t, err)

			rejection := ports.Rejection{
				Party:  "bob",
				Kind:   domain.ErrorKindNotAuthorized,
				Reason: "asset not owned by lockers",
			}
			err = sessions.AddRejection(ctx, sessionId, rejection)
			require.NoError(t, err)

			select {
			case <-sessions.Done(sessionId):
			case <-time.After(2 * time.Second):
				t.Fatal("session not done")
			}

			// The first rejection sticks.
			err = sessions.AddRejection(ctx, sessionId, ports.Rejection{Party: "issuer"})
			require.NoError(t, err)
			err = sessions.AddSignature(ctx, sessionId, "issuer", []byte("sig"))
			require.NoError(t, err)

			got, ok := sessions.Get(ctx, sessionId)
			require.True(t, ok)
			require.NotNil(t, got.Rejection)
			require.Equal(t, rejection, *got.Rejection)
			require.False(t, got.AllSigned())
		})

		t.Run("deleted", func(t *testing.T) {
			sessions := store.SigningSessions()
			sessionId := uuid.New().String()

			_, err := sessions.New(ctx, sessionId, payload, signers)
			require.NoError(t, err)

			sessions.Delete(ctx, sessionId)

			got, ok := sessions.Get(ctx, sessionId)
			require.False(t, ok)
			require.Nil(t, got)

			err = sessions.AddSignature(ctx, sessionId, "alice", []byte("sig"))
			require.Error(t, err)
		})
	})

	t.Run("SignedTransitionsStore", func(t *testing.T) {
		signed := store.SignedTransitions()
		transitionId := uuid.New().String()

		got, ok := signed.Get(ctx, transitionId)
		require.False(t, ok)
		require.Nil(t, got)

		err := signed.Add(ctx, transitionId, []byte("signature"))
		require.NoError(t, err)

		got, ok = signed.Get(ctx, transitionId)
		require.True(t, ok)
		require.Equal(t, []byte("signature"), got)

		signed.Delete(ctx, transitionId)
		_, ok = signed.Get(ctx, transitionId)
		require.False(t, ok)
	})
	t.Run("RecordReservationsStore", func(t *testing.T) {
		reservations := store.RecordReservations()
		recordId := "2bb80d53_" + uuid.New().String()

		holder, err := reservations.Reserve(ctx, recordId, "claim-tx", time.Minute)
		require.NoError(t, err)
		require.Equal(t, "claim-tx", holder)

		// Same transition, e.g. a redelivered proposal.
		holder, err = reservations.Reserve(ctx, recordId, "claim-tx", time.Minute)
		require.NoError(t, err)
		require.Equal(t, "claim-tx", holder)

		holder, err = reservations.Reserve(ctx, recordId, "unlock-tx", time.Minute)
		require.NoError(t, err)
		require.Equal(t, "claim-tx", holder)

		// Only the holder releases the record.
		reservations.Release(ctx, recordId, "unlock-tx")
		holder, err = reservations.Reserve(ctx, recordId, "unlock-tx", time.Minute)
		require.NoError(t, err)
		require.Equal(t, "claim-tx", holder)

		reservations.Release(ctx, recordId, "claim-tx")
		holder, err = reservations.Reserve(ctx, recordId, "unlock-tx", time.Minute)
		require.NoError(t, err)
		require.Equal(t, "unlock-tx", holder)
		reservations.Release(ctx, recordId, "unlock-tx")

		t.Run("expired", func(t *testing.T) {
			recordId := "2bb80d53_" + uuid.New().String()

			_, err := reservations.Reserve(ctx, recordId, "claim-tx", 50*time.Millisecond)
			require.NoError(t, err)

			require.Eventually(t, func() bool {
				holder, err := reservations.Reserve(ctx, recordId, "unlock-tx", time.Minute)
				return err == nil && holder == "unlock-tx"
			}, 2*time.Second, 20*time.Millisecond)
			reservations.Release(ctx, recordId, "unlock-tx")
		})
	})
}

package domain_test

import (
	"testing"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	record := lockedHTLC(t)
	asset := domain.Asset{Type: "bond", Id: "A001", Owners: []string{"alice"}, LockedBy: recordId}

	claim := domain.Transition{
		Kind:       domain.TransitionClaim,
		Record:     *record,
		Asset:      asset,
		NewOwners:  recipients.Members(),
		Preimage:   secret,
		Signers:    []string{"bob", "issuer"},
		Submitter:  "bob",
		ProposedAt: now.UnixMilli(),
	}

	t.Run("id", func(t *testing.T) {
		require.NoError(t, claim.Validate())
		require.Equal(t, domain.HTLCLockedStatus, claim.FromStatus())
		require.Equal(t, domain.HTLCClaimedStatus, claim.ToStatus())

		id, err := claim.Id()
		require.NoError(t, err)
		require.Len(t, id, 64)

		sameId, err := claim.Id()
		require.NoError(t, err)
		require.Equal(t, id, sameId)

		other := claim
		other.ProposedAt++
		otherId, err := other.Id()
		require.NoError(t, err)
		require.NotEqual(t, id, otherId)

		payload, err := claim.Payload()
		require.NoError(t, err)
		require.Equal(t, byte('{'), payload[0])
		require.NotContains(t, string(payload), "\n")
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			description string
			mutate      func(*domain.Transition)
			expectedErr string
		}{
			{
				description: "undefined kind",
				mutate:      func(tr *domain.Transition) { tr.Kind = domain.TransitionUndefined },
				expectedErr: "InvalidArgument: undefined transition kind",
			},
			{
				description: "missing submitter",
				mutate:      func(tr *domain.Transition) { tr.Submitter = "" },
				expectedErr: "InvalidArgument: missing submitter",
			},
			{
				description: "other asset",
				mutate:      func(tr *domain.Transition) { tr.Asset.Id = "A002" },
				expectedErr: "InvalidArgument: asset bond:A002 does not match htlc asset bond:A001",
			},
			{
				description: "missing new owners",
				mutate:      func(tr *domain.Transition) { tr.NewOwners = nil },
				expectedErr: "InvalidArgument: missing new owners",
			},
			{
				description: "submitter is not a signer",
				mutate:      func(tr *domain.Transition) { tr.Signers = []string{"issuer"} },
				expectedErr: "NotAuthorized: submitter bob is not a signer",
			},
			{
				description: "missing preimage",
				mutate:      func(tr *domain.Transition) { tr.Preimage = nil },
				expectedErr: "InvalidArgument: missing preimage",
			},
		}

		for _, f := range fixtures {
			t.Run(f.description, func(t *testing.T) {
				tr := claim
				f.mutate(&tr)
				require.EqualError(t, tr.Validate(), f.expectedErr)
			})
		}
	})

	t.Run("partial fungible lock", func(t *testing.T) {
		holding := domain.Asset{
			Type: "token", Id: "T1", Fungible: true, Quantity: 100, Owners: []string{"alice"},
		}
		rec := *domain.NewHTLC()
		rec.Id = recordId
		rec.Asset = domain.AssetRef{Type: "token", Id: "T2", Quantity: 30}

		lock := domain.Transition{
			Kind:      domain.TransitionLock,
			Record:    rec,
			Asset:     holding,
			NewOwners: lockers.Members(),
			Signers:   []string{"alice", "bob", "issuer"},
			Submitter: "alice",
		}
		require.NoError(t, lock.Validate())
		require.Equal(t, int64(0), lock.ProposalTime().Unix())
		require.Equal(t, domain.HTLCUndefinedStatus, lock.FromStatus())
		require.Equal(t, domain.HTLCLockedStatus, lock.ToStatus())
	})
}

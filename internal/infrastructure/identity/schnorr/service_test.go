package schnorridentity_test

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/ark-network/htlc/internal/core/domain"
	schnorridentity "github.com/ark-network/htlc/internal/infrastructure/identity/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func TestIdentityService(t *testing.T) {
	ctx := context.Background()

	alicePriv, alicePub, err := schnorridentity.GenerateKeyPair()
	require.NoError(t, err)
	bobPriv, bobPub, err := schnorridentity.GenerateKeyPair()
	require.NoError(t, err)

	parties := map[string]string{"alice": alicePub, "bob": bobPub}

	alice, err := schnorridentity.NewService("alice", alicePriv, parties)
	require.NoError(t, err)
	bob, err := schnorridentity.NewService("bob", bobPriv, parties)
	require.NoError(t, err)

	payload := []byte(`{"Kind":1}`)

	t.Run("valid", func(t *testing.T) {
		require.Equal(t, "alice", alice.PartyId())

		sig, err := alice.Sign(ctx, payload)
		require.NoError(t, err)
		require.Len(t, sig, 64)

		err = bob.Verify(ctx, "alice", payload, sig)
		require.NoError(t, err)
		err = alice.Verify(ctx, "alice", payload, sig)
		require.NoError(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		sig, err := alice.Sign(ctx, payload)
		require.NoError(t, err)

		fixtures := []struct {
			name        string
			party       string
			payload     []byte
			signature   []byte
			expectedErr error
		}{
			{
				name:        "wrong signer",
				party:       "bob",
				payload:     payload,
				signature:   sig,
				expectedErr: domain.ErrNotAuthorized,
			},
			{
				name:        "tampered payload",
				party:       "alice",
				payload:     []byte(`{"Kind":2}`),
				signature:   sig,
				expectedErr: domain.ErrNotAuthorized,
			},
			{
				name:        "unknown party",
				party:       "mallory",
				payload:     payload,
				signature:   sig,
				expectedErr: domain.ErrNotAuthorized,
			},
			{
				name:        "malformed signature",
				party:       "alice",
				payload:     payload,
				signature:   []byte("sig"),
				expectedErr: domain.ErrEncoding,
			},
		}

		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				err := bob.Verify(ctx, f.party, f.payload, f.signature)
				require.ErrorIs(t, err, f.expectedErr)
			})
		}
	})

	t.Run("compressed public key", func(t *testing.T) {
		privkey, err := secp256k1.GeneratePrivateKey()
		require.NoError(t, err)
		privHex := hex.EncodeToString(privkey.Serialize())
		pubHex := hex.EncodeToString(privkey.PubKey().SerializeCompressed())

		carol, err := schnorridentity.NewService("carol", privHex, nil)
		require.NoError(t, err)
		verifier, err := schnorridentity.NewService(
			"alice", alicePriv, map[string]string{"carol": pubHex},
		)
		require.NoError(t, err)

		sig, err := carol.Sign(ctx, payload)
		require.NoError(t, err)
		err = verifier.Verify(ctx, "carol", payload, sig)
		require.NoError(t, err)
	})

	t.Run("mismatching key", func(t *testing.T) {
		_, err := schnorridentity.NewService("alice", bobPriv, parties)
		require.Error(t, err)

		_, err = schnorridentity.NewService("alice", "nothex", parties)
		require.Error(t, err)

		_, err = schnorridentity.NewService("", alicePriv, parties)
		require.Error(t, err)
	})
}

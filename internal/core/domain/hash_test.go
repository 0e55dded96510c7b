package domain_test

import (
	"encoding/base64"
	"testing"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	t.Run("generate", func(t *testing.T) {
		t.Run("from secret", func(t *testing.T) {
			preimage, hash := domain.GenerateHash([]byte("secret"))
			require.Equal(t, "c2VjcmV0", preimage)
			require.Equal(t, "K7gNU3sdo+OL0wNhqoVWhr3g6s1xYv72ol/pe/Unols=", hash)

			ok, err := domain.VerifyHashBase64(preimage, hash)
			require.NoError(t, err)
			require.True(t, ok)
		})

		t.Run("random", func(t *testing.T) {
			preimage, hash := domain.GenerateHash(nil)
			buf, err := base64.StdEncoding.DecodeString(preimage)
			require.NoError(t, err)
			require.Len(t, buf, domain.DefaultPreimageSize)

			otherPreimage, otherHash := domain.GenerateHash(nil)
			require.NotEqual(t, preimage, otherPreimage)
			require.NotEqual(t, hash, otherHash)
		})
	})

	t.Run("verify", func(t *testing.T) {
		_, hash := domain.GenerateHash([]byte("secret"))
		buf, err := domain.HashFromBase64(hash)
		require.NoError(t, err)

		require.True(t, domain.VerifyHash([]byte("secret"), buf))
		require.False(t, domain.VerifyHash([]byte("secreT"), buf))
		require.False(t, domain.VerifyHash([]byte{}, buf))
		require.False(t, domain.VerifyHash([]byte("secret"), buf[:31]))
	})

	t.Run("invalid encoding", func(t *testing.T) {
		fixtures := []struct {
			hash        string
			expectedErr string
		}{
			{
				hash:        "not base64!",
				expectedErr: "EncodingError: invalid hash encoding",
			},
			{
				hash:        "c2VjcmV0",
				expectedErr: "EncodingError: invalid hash length, expected 32 got 6",
			},
		}

		for _, f := range fixtures {
			buf, err := domain.HashFromBase64(f.hash)
			require.ErrorContains(t, err, f.expectedErr)
			require.ErrorIs(t, err, domain.ErrEncoding)
			require.Nil(t, buf)
		}

		ok, err := domain.VerifyHashBase64("%%%", "K7gNU3sdo+OL0wNhqoVWhr3g6s1xYv72ol/pe/Unols=")
		require.ErrorIs(t, err, domain.ErrEncoding)
		require.False(t, ok)
	})
}

package domain_test

import (
	"strings"
	"testing"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestRecordId(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		id := domain.NewRecordIdFromHash(hash)
		require.Equal(t, "2bb80d53", id.Tag)

		parsed, err := domain.ParseRecordId(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)

		parsed, err = domain.ParseRecordId(recordId)
		require.NoError(t, err)
		require.Equal(t, recordId, parsed.String())

		parsed, err = domain.ParseRecordId(strings.ToUpper(recordId))
		require.NoError(t, err)
		require.Equal(t, recordId, "2bb80d53_"+parsed.UUID.String())

		other := domain.NewRecordIdFromHash(hash)
		require.Equal(t, id.Tag, other.Tag)
		require.NotEqual(t, id.String(), other.String())
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			id          string
			expectedErr string
		}{
			{
				id:          "",
				expectedErr: `InvalidIdentifier: invalid record id "", expected <tag>_<uuid>`,
			},
			{
				id:          "2bb80d53",
				expectedErr: `InvalidIdentifier: invalid record id "2bb80d53", expected <tag>_<uuid>`,
			},
			{
				id:          "a_b_c",
				expectedErr: `InvalidIdentifier: invalid record id "a_b_c", expected <tag>_<uuid>`,
			},
			{
				id:          "_8c2ac0a4-0a88-4a5c-9e3c-5d4b0a0e9d11",
				expectedErr: "missing tag",
			},
			{
				id:          "2bb80d53_not-a-uuid",
				expectedErr: "malformed uuid",
			},
			{
				id:          "2bb80d53_8c2ac0a40a884a5c9e3c5d4b0a0e9d11",
				expectedErr: "uuid must be in canonical form",
			},
			{
				id:          "2bb80d53_{8c2ac0a4-0a88-4a5c-9e3c-5d4b0a0e9d11}",
				expectedErr: "uuid must be in canonical form",
			},
		}

		for _, f := range fixtures {
			_, err := domain.ParseRecordId(f.id)
			require.ErrorContains(t, err, f.expectedErr)
			require.ErrorIs(t, err, domain.ErrInvalidIdentifier)
		}
	})

	t.Run("tag", func(t *testing.T) {
		require.NoError(t, domain.ValidateRecordTag("swap-42"))

		err := domain.ValidateRecordTag("")
		require.Equal(t, domain.ErrorKindInvalidArgument, domain.KindOf(err))

		err = domain.ValidateRecordTag("swap_42")
		require.Equal(t, domain.ErrorKindInvalidArgument, domain.KindOf(err))
		require.ErrorContains(t, err, `"swap_42"`)
	})
}

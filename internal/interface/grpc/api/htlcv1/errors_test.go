package htlcv1_test

import (
	"fmt"
	"testing"

	"github.com/ark-network/htlc/internal/core/domain"
	htlcv1 "github.com/ark-network/htlc/internal/interface/grpc/api/htlcv1"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorMapping(t *testing.T) {
	t.Run("domain errors", func(t *testing.T) {
		fixtures := []struct {
			kind         domain.ErrorKind
			expectedCode codes.Code
		}{
			{domain.ErrorKindNotFound, codes.NotFound},
			{domain.ErrorKindNotAuthorized, codes.PermissionDenied},
			{domain.ErrorKindExpired, codes.FailedPrecondition},
			{domain.ErrorKindNotExpired, codes.FailedPrecondition},
			{domain.ErrorKindAlreadyTerminal, codes.FailedPrecondition},
			{domain.ErrorKindTimeout, codes.DeadlineExceeded},
			{domain.ErrorKindConsensusFailed, codes.Aborted},
			{domain.ErrorKindHashMismatch, codes.InvalidArgument},
			{domain.ErrorKindInvalidIdentifier, codes.InvalidArgument},
		}
		for _, f := range fixtures {
			t.Run(f.kind.String(), func(t *testing.T) {
				err := fmt.Errorf("wrapped: %w", domain.NewError(f.kind, "some reason"))

				st := htlcv1.ToStatus(err)
				require.Equal(t, f.expectedCode, status.Code(st))

				restored := htlcv1.FromStatus(st)
				require.Equal(t, f.kind, domain.KindOf(restored))
				require.Equal(t, "some reason", domain.ReasonOf(restored))
			})
		}
	})

	t.Run("other errors", func(t *testing.T) {
		st := htlcv1.ToStatus(fmt.Errorf("db is gone"))
		require.Equal(t, codes.Internal, status.Code(st))

		restored := htlcv1.FromStatus(st)
		require.Equal(t, domain.ErrorKindUndefined, domain.KindOf(restored))
	})

	t.Run("plain status", func(t *testing.T) {
		restored := htlcv1.FromStatus(status.Error(codes.DeadlineExceeded, "context deadline exceeded"))
		require.Equal(t, domain.ErrorKindTimeout, domain.KindOf(restored))

		require.Nil(t, htlcv1.ToStatus(nil))
		require.Nil(t, htlcv1.FromStatus(nil))
	})
}

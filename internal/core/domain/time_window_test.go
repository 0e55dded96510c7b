package domain_test

import (
	"testing"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestTimeWindow(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		w, err := domain.NewTimeWindow(expiry, now)
		require.NoError(t, err)

		require.True(t, w.IsBeforeExpiry(now))
		require.True(t, w.IsBeforeExpiry(expiry))
		require.False(t, w.IsAfterExpiry(expiry))
		require.False(t, w.IsBeforeExpiry(expiry.Add(time.Nanosecond)))
		require.True(t, w.IsAfterExpiry(expiry.Add(time.Nanosecond)))
		require.True(t, w.IsAfterExpiry(w.ReclaimableAt()))
		require.False(t, w.IsBeforeExpiry(w.ReclaimableAt()))
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			expiry      time.Time
			expectedErr string
		}{
			{
				expiry:      time.Time{},
				expectedErr: "InvalidTimeout: missing expiry time",
			},
			{
				expiry: now,
				expectedErr: "InvalidTimeout: expiry time 2024-06-01T12:00:00Z must be after " +
					"current time 2024-06-01T12:00:00Z",
			},
			{
				expiry: now.Add(-time.Second),
				expectedErr: "InvalidTimeout: expiry time 2024-06-01T11:59:59Z must be after " +
					"current time 2024-06-01T12:00:00Z",
			},
		}

		for _, f := range fixtures {
			_, err := domain.NewTimeWindow(f.expiry, now)
			require.EqualError(t, err, f.expectedErr)
			require.ErrorIs(t, err, domain.ErrInvalidTimeout)
		}
	})
}

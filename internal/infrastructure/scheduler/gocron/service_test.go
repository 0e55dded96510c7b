package timescheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	timescheduler "github.com/ark-network/htlc/internal/infrastructure/scheduler/gocron"
	"github.com/stretchr/testify/require"
)

func TestScheduleTaskOnce(t *testing.T) {
	svc := timescheduler.NewScheduler(nil)
	svc.Start()
	defer svc.Stop()

	t.Run("future", func(t *testing.T) {
		var runs int32
		err := svc.ScheduleTaskOnce(time.Now().Add(time.Second), func() {
			atomic.AddInt32(&runs, 1)
		})
		require.NoError(t, err)

		require.Never(t, func() bool {
			return atomic.LoadInt32(&runs) > 0
		}, 500*time.Millisecond, 50*time.Millisecond)
		require.Eventually(t, func() bool {
			return atomic.LoadInt32(&runs) == 1
		}, 3*time.Second, 50*time.Millisecond)
		time.Sleep(1500 * time.Millisecond)
		require.Equal(t, int32(1), atomic.LoadInt32(&runs))
	})

	t.Run("past", func(t *testing.T) {
		done := make(chan struct{})
		err := svc.ScheduleTaskOnce(time.Now().Add(-time.Minute), func() {
			close(done)
		})
		require.NoError(t, err)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task in the past was not run")
		}
	})
}

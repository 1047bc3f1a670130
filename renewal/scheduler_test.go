package renewal_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/renewal"
	"github.com/stretchr/testify/require"
)

const tick = 10 * time.Millisecond

func TestScheduler_TicksUntilStopped(t *testing.T) {
	var count atomic.Int32
	s := renewal.New(tick, func(context.Context) { count.Add(1) })
	require.False(t, s.Running())

	s.Start(context.Background())
	require.True(t, s.Running())
	require.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, tick)

	s.Stop()
	require.False(t, s.Running())
	s.Wait()

	stopped := count.Load()
	time.Sleep(5 * tick)
	require.Equal(t, stopped, count.Load())
	require.False(t, s.Running())
}

func TestScheduler_StartReplacesRunningSchedule(t *testing.T) {
	var active, maxActive atomic.Int32
	var count atomic.Int32
	task := func(ctx context.Context) {
		count.Add(1)
		n := active.Add(1)
		defer active.Add(-1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		<-ctx.Done()
	}

	s := renewal.New(tick, task)
	s.Start(context.Background())
	require.Eventually(t, func() bool { return count.Load() >= 1 }, time.Second, tick)

	// Replacing the schedule cancels the blocked task of the old one.
	s.Start(context.Background())
	require.Eventually(t, func() bool { return count.Load() >= 2 }, time.Second, tick)

	s.Stop()
	s.Wait()
	require.Equal(t, int32(1), maxActive.Load())
}

func TestScheduler_StopFromTask(t *testing.T) {
	var count atomic.Int32
	var s *renewal.Scheduler
	s = renewal.New(tick, func(context.Context) {
		count.Add(1)
		s.Stop()
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return !s.Running() }, time.Second, tick)
	s.Wait()
	require.Equal(t, int32(1), count.Load())
}

func TestScheduler_StopWhenNotRunning(t *testing.T) {
	s := renewal.New(0, func(context.Context) {})
	require.Equal(t, renewal.DefaultInterval, s.Interval())
	s.Stop()
	require.False(t, s.Running())
}

func TestScheduler_ParentContextCancels(t *testing.T) {
	var count atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	s := renewal.New(tick, func(context.Context) { count.Add(1) })

	s.Start(ctx)
	cancel()
	s.Wait()

	stopped := count.Load()
	time.Sleep(5 * tick)
	require.Equal(t, stopped, count.Load())
	require.False(t, s.Running())
}

func TestScheduler_StartWithDoneContext(t *testing.T) {
	var count atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := renewal.New(tick, func(context.Context) { count.Add(1) })
	s.Start(ctx)
	s.Wait()

	require.False(t, s.Running())
	time.Sleep(3 * tick)
	require.Zero(t, count.Load())
}

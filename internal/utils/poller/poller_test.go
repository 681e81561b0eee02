package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_RunsPeriodically(t *testing.T) {
	var runs atomic.Int32
	p := NewPoller("test", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Start(ctx)

	require.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	p.Stop()
}

func TestPoller_SkipsTickWhileInFlight(t *testing.T) {
	var started atomic.Int32
	release := make(chan struct{})

	p := NewPoller("slow", 10*time.Millisecond, func(ctx context.Context) error {
		started.Add(1)
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Start(ctx)

	require.Eventually(t, func() bool {
		return started.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// Several ticks pass while the first run is blocked; none may start a
	// second run of the same task.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), started.Load())

	close(release)
	require.Eventually(t, func() bool {
		return started.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	p.Stop()
}

func TestPoller_StopsOnContextCancellation(t *testing.T) {
	var runs atomic.Int32
	p := NewPoller("cancelled", 5*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}

	// No further ticks fire after cancellation.
	observed := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, observed, runs.Load())
}

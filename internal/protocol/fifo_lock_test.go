package protocol

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFIFOLock_HandsOffInArrivalOrder(t *testing.T) {
	require := require.New(t)

	l := newFIFOLock()
	require.NoError(l.Lock(context.Background()))

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(l.Lock(context.Background()))
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			l.Unlock()
		}()
		want := i + 1
		require.Eventually(func() bool { return l.pending() == want }, time.Second, time.Millisecond)
	}

	l.Unlock()
	wg.Wait()
	require.Equal([]int{0, 1, 2, 3, 4}, order)
}

func TestFIFOLock_CancelledWaiterLeavesQueue(t *testing.T) {
	require := require.New(t)

	l := newFIFOLock()
	require.NoError(l.Lock(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Lock(ctx) }()
	require.Eventually(func() bool { return l.pending() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(<-errCh, context.Canceled)
	require.Equal(0, l.pending())

	l.Unlock()
	require.NoError(l.Lock(context.Background()))
	l.Unlock()
}

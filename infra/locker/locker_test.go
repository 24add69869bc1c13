package locker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radhian/billing-reconciliation/entity"
)

func TestMemoryLocker_SecondCallerWaits(t *testing.T) {
	l := New()
	ctx := context.Background()

	first, err := l.Obtain(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, l.IsProcessing("k"))

	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = l.Obtain(timeoutCtx, "k", time.Minute)
	assert.ErrorIs(t, err, entity.ErrLockNotObtained)

	other, err := l.Obtain(ctx, "other", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, first.Release(ctx))
	require.NoError(t, first.Release(ctx))
	assert.False(t, l.IsProcessing("k"))
}

func TestMemoryLocker_SerializesCriticalSection(t *testing.T) {
	l := New()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock, err := l.Obtain(ctx, "snapshot", time.Minute)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			_ = lock.Release(ctx)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/apperror"
)

func TestLocalLocker_MutualExclusionPerKey(t *testing.T) {
	l := NewLocalLocker(5 * time.Second)
	ctx := context.Background()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "15550001")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer release()

			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, maxInside.Load())
	require.Equal(t, 0, l.held(), "lock table entries are released")
}

func TestLocalLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocalLocker(50 * time.Millisecond)
	ctx := context.Background()

	releaseA, err := l.Acquire(ctx, "a")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := l.Acquire(ctx, "b")
	require.NoError(t, err)
	releaseB()
}

func TestLocalLocker_TimeoutIsLockTimeout(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "15550001")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "15550001")
	require.ErrorIs(t, err, apperror.ErrLockTimeout)
	require.True(t, apperror.IsRetryable(err))

	release()
	release() // double release is harmless

	again, err := l.Acquire(ctx, "15550001")
	require.NoError(t, err)
	again()
	require.Equal(t, 0, l.held())
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	l := NewLocalLocker(time.Second)

	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k")
	require.ErrorIs(t, err, apperror.ErrLockTimeout)
	require.ErrorIs(t, err, context.Canceled)
}

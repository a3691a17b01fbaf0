package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalScopeLocker_MutualExclusion(t *testing.T) {
	locker := NewLocalScopeLocker(2 * time.Second)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := locker.Acquire(ctx, "qna:1:root")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			assert.NoError(t, l.Release(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locker.size())
}

func TestLocalScopeLocker_DistinctKeysDoNotBlock(t *testing.T) {
	locker := NewLocalScopeLocker(50 * time.Millisecond)
	ctx := context.Background()

	a, err := locker.Acquire(ctx, "qna:1:root")
	require.NoError(t, err)
	b, err := locker.Acquire(ctx, "qna:1:001")
	require.NoError(t, err)

	require.NoError(t, a.Release(ctx))
	require.NoError(t, b.Release(ctx))
	assert.Equal(t, 0, locker.size())
}

func TestLocalScopeLocker_WaitTimeout(t *testing.T) {
	locker := NewLocalScopeLocker(20 * time.Millisecond)
	ctx := context.Background()

	held, err := locker.Acquire(ctx, "qna:1:root")
	require.NoError(t, err)
	defer held.Release(ctx)

	_, err = locker.Acquire(ctx, "qna:1:root")
	require.Error(t, err)
	assert.True(t, errors.Is(err, qna.ErrReplyScopeBusy))
}

func TestLocalScopeLocker_ContextCanceled(t *testing.T) {
	locker := NewLocalScopeLocker(time.Second)

	held, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locker.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, held.Release(context.Background()))
	assert.Equal(t, 0, locker.size())
}

func TestLocalScopeLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := NewLocalScopeLocker(20 * time.Millisecond)
	ctx := context.Background()

	l, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, l.Release(ctx))
	require.NoError(t, l.Release(ctx))

	again, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestLocalScopeLocker_HandsOverAfterRelease(t *testing.T) {
	locker := NewLocalScopeLocker(time.Second)
	ctx := context.Background()

	first, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		l, err := locker.Acquire(ctx, "k")
		if assert.NoError(t, err) {
			close(acquired)
			_ = l.Release(ctx)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired while first held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, first.Release(ctx))

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestNewLocalScopeLocker_DefaultWait(t *testing.T) {
	locker := NewLocalScopeLocker(0)
	assert.Equal(t, DefaultLockWait, locker.wait)
}

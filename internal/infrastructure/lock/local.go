// Package lock provides the scope locks that serialize reply path allocation.
package lock

import (
	"context"
	"sync"
	"time"

	appqna "github.com/setof/qna-backend/internal/application/qna"
	"github.com/setof/qna-backend/internal/domain/qna"
)

// DefaultLockWait is used when a locker is built without a wait bound
const DefaultLockWait = 3 * time.Second

type localEntry struct {
	sem  chan struct{}
	refs int
}

// LocalScopeLocker is an in-process keyed mutex.
// It only serializes writers inside one process.
type LocalScopeLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	wait    time.Duration
}

// NewLocalScopeLocker creates a LocalScopeLocker that gives up after wait
func NewLocalScopeLocker(wait time.Duration) *LocalScopeLocker {
	if wait <= 0 {
		wait = DefaultLockWait
	}
	return &LocalScopeLocker{
		entries: make(map[string]*localEntry),
		wait:    wait,
	}
}

// Acquire blocks until key is free, the wait bound elapses or ctx is done
func (l *LocalScopeLocker) Acquire(ctx context.Context, key string) (appqna.ScopeLock, error) {
	e := l.ref(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return &localLock{locker: l, key: key, entry: e}, nil
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	case <-timer.C:
		l.unref(key, e)
		return nil, qna.ErrReplyScopeBusy.Errorf("scope %s still busy after %s", key, l.wait)
	}
}

func (l *LocalScopeLocker) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *LocalScopeLocker) unref(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// size reports how many keys are held or awaited
func (l *LocalScopeLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

type localLock struct {
	locker *LocalScopeLocker
	key    string
	entry  *localEntry
	once   sync.Once
}

// Release frees the scope. Extra calls are no-ops.
func (k *localLock) Release(context.Context) error {
	k.once.Do(func() {
		<-k.entry.sem
		k.locker.unref(k.key, k.entry)
	})
	return nil
}

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/apperror"
)

// Locker serializes work per key. Acquire waits a bounded time and returns a
// release func that is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// LocalLocker is a keyed lock table for a single process.
type LocalLocker struct {
	wait time.Duration

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{wait: wait, locks: make(map[string]*keyLock)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	kl := l.ref(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case kl.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.sem
				l.unref(key, kl)
			})
		}, nil
	case <-timer.C:
		l.unref(key, kl)
		return nil, fmt.Errorf("%w: key %s after %s", apperror.ErrLockTimeout, key, l.wait)
	case <-ctx.Done():
		l.unref(key, kl)
		return nil, fmt.Errorf("%w: %w", apperror.ErrLockTimeout, ctx.Err())
	}
}

// held reports how many keys currently have holders or waiters.
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *LocalLocker) ref(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *LocalLocker) unref(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

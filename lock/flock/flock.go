// Package flock guards a user's VM home with a file lock so concurrent
// invocations of the tool (same user, different shells) serialize their
// mutations.
package flock

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/nivram913/vmmgr/lock"
)

const retryInterval = 100 * time.Millisecond

var _ lock.Locker = (*Lock)(nil)

// Lock layers two exclusion levels: a size-1 channel serializes goroutines
// inside this process with context-aware blocking, and flock(2) on the lock
// file fences off other processes. A fresh flock handle is opened per
// acquisition so callers sharing one Lock value still block each other at
// the kernel level.
type Lock struct {
	path string
	sem  chan struct{}
	held *flock.Flock
}

// New creates a Lock backed by the file at path. The file is created on
// first acquisition if missing.
func New(path string) *Lock {
	return &Lock{path: path, sem: make(chan struct{}, 1)}
}

// Lock blocks until the lock is acquired or ctx expires.
func (l *Lock) Lock(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("lock %s: %w", l.path, ctx.Err())
	}
	ok, err := l.acquire(func(fl *flock.Flock) (bool, error) {
		return fl.TryLockContext(ctx, retryInterval)
	})
	if err != nil {
		return fmt.Errorf("flock %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("flock %s: %w", l.path, ctx.Err())
	}
	return nil
}

// TryLock acquires without blocking. (false, nil) means another holder has
// the lock.
func (l *Lock) TryLock(_ context.Context) (bool, error) {
	select {
	case l.sem <- struct{}{}:
	default:
		return false, nil
	}
	return l.acquire(func(fl *flock.Flock) (bool, error) {
		return fl.TryLock()
	})
}

// Unlock releases both levels. Safe to call once per successful Lock or
// TryLock.
func (l *Lock) Unlock(_ context.Context) error {
	var err error
	if l.held != nil {
		err = l.held.Unlock()
		l.held = nil
	}
	select {
	case <-l.sem:
	default:
	}
	if err != nil {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return nil
}

// acquire runs fn against a fresh flock handle. On failure the in-process
// token taken by the caller is handed back so Lock/Unlock stay balanced.
func (l *Lock) acquire(fn func(*flock.Flock) (bool, error)) (bool, error) {
	fl := flock.New(l.path)
	locked, err := fn(fl)
	if err != nil || !locked {
		<-l.sem
		return false, err
	}
	l.held = fl
	return true, nil
}

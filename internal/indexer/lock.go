package indexer

import "sync/atomic"

// IndexLock is a non-blocking lock that lets one indexing run proceed and
// turns concurrent requests away instead of queueing them.
type IndexLock struct {
	held  atomic.Bool
	owner atomic.Pointer[string]
}

// TryAcquire takes the lock for owner without blocking.
// It returns false when another run holds the lock.
func (l *IndexLock) TryAcquire(owner string) bool {
	if !l.held.CompareAndSwap(false, true) {
		return false
	}
	l.owner.Store(&owner)
	return true
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *IndexLock) Release() {
	l.owner.Store(nil)
	l.held.Store(false)
}

// Owner returns the current holder's name, or "" when the lock is free.
func (l *IndexLock) Owner() string {
	if p := l.owner.Load(); p != nil {
		return *p
	}
	return ""
}

package application

import (
	"sync"
)

// itemLocks serializes reconciliation work per inventory item. Transfer legs
// that may create the target item lock on a sku@branch key instead of an
// item ID so creation and credit serialize on the same key.
type itemLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[string]*lockEntry)}
}

// Lock acquires the lock for one key and returns its release func
func (l *itemLocks) Lock(key string) func() {
	entry := l.acquire(key)
	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.release(key)
	}
}

// LockPair acquires two keys in lexicographic order so concurrent transfers
// over the same pair cannot deadlock. Equal keys lock once.
func (l *itemLocks) LockPair(a, b string) func() {
	if a == b {
		return l.Lock(a)
	}
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	unlockFirst := l.Lock(first)
	unlockSecond := l.Lock(second)
	return func() {
		unlockSecond()
		unlockFirst()
	}
}

func (l *itemLocks) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (l *itemLocks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

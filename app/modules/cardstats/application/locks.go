package cardstatsservice

import (
	"sync"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

// scopeLocks serializes recomputes of the same scope inside one process.
// Different scopes never block each other.
type scopeLocks struct {
	mu    sync.Mutex
	locks map[cardstatsdomain.Scope]*scopeLock
}

type scopeLock struct {
	mu   sync.Mutex
	refs int
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[cardstatsdomain.Scope]*scopeLock)}
}

// lock blocks until scope is free and returns its release func.
func (l *scopeLocks) lock(scope cardstatsdomain.Scope) func() {
	l.mu.Lock()
	entry, ok := l.locks[scope]
	if !ok {
		entry = &scopeLock{}
		l.locks[scope] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, scope)
		}
		l.mu.Unlock()
	}
}

func (l *scopeLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

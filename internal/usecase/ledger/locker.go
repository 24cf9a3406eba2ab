package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// ownerLocks hands out one mutex per owner so operations of one user are
// serialized while different users never contend. An entry lives only while
// some goroutine holds or waits for it.
type ownerLocks struct {
	mu    sync.Mutex // protects locks and every refs counter
	locks map[uuid.UUID]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[uuid.UUID]*ownerLock)}
}

// lock blocks until the owner's mutex is held and returns its release func
func (l *ownerLocks) lock(ownerID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[ownerID]
	if !ok {
		entry = &ownerLock{}
		l.locks[ownerID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, ownerID)
		}
		l.mu.Unlock()
	}
}


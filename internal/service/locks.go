package service

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OwnerLocks serializes plan mutations per owner. Activation checks and
// cascade rewrites read then write several collections without a
// transaction, so concurrent mutations for the same owner must queue.
type OwnerLocks struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

func NewOwnerLocks() *OwnerLocks {
	return &OwnerLocks{locks: make(map[primitive.ObjectID]*sync.Mutex)}
}

// Lock acquires the mutex for the given owner and returns the unlock
// function. Entries are never evicted; the map grows with the number of
// distinct owners seen by this process.
func (l *OwnerLocks) Lock(ownerID primitive.ObjectID) func() {
	l.mu.Lock()
	m, ok := l.locks[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ownerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

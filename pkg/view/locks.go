package view

import "sync"

// lockTable hands out per-view mutexes so mutations on the same view id
// are serialized while unrelated views proceed concurrently. Entries
// are reference-counted and removed when idle, so the table does not
// grow with the lifetime set of view ids.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*viewLock
}

type viewLock struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*viewLock)}
}

// acquire blocks until the caller holds the mutex for id.
func (t *lockTable) acquire(id string) *viewLock {
	t.mu.Lock()
	l, ok := t.locks[id]
	if !ok {
		l = &viewLock{}
		t.locks[id] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return l
}

// release unlocks the mutex and drops the table entry once no caller
// holds or waits on it.
func (t *lockTable) release(id string, l *viewLock) {
	l.mu.Unlock()

	t.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(t.locks, id)
	}
	t.mu.Unlock()
}

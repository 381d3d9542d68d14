package registry

import "sync"

type roomLock struct {
	mu   sync.RWMutex
	refs int
}

// lockTable hands out one RWMutex per room code and drops it once nobody holds or waits on it.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*roomLock)}
}

func (t *lockTable) acquire(code string) *roomLock {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[code]
	if !ok {
		l = &roomLock{}
		t.locks[code] = l
	}
	l.refs++

	return l
}

func (t *lockTable) release(code string, l *roomLock) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(t.locks, code)
	}
}

func (t *lockTable) lock(code string) func() {
	l := t.acquire(code)
	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		t.release(code, l)
	}
}

func (t *lockTable) rlock(code string) func() {
	l := t.acquire(code)
	l.mu.RLock()

	return func() {
		l.mu.RUnlock()
		t.release(code, l)
	}
}

func (t *lockTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.locks)
}

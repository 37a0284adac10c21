package service

import "sync"

// userLocks serializes cart operations per user. Every operation here is a
// read-modify-write over the same document, so without this two concurrent
// adds could both see "not in cart" and both append.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *userLocks) lock(email string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[email]
	if !ok {
		m = &sync.Mutex{}
		l.locks[email] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Package keylock provides a mutex per string key, used to serialize
// read-modify-write sequences on per-account and per-peer records.
package keylock

import "sync"

// Map hands out one mutex per key. Mutexes are never discarded; the key
// space here (accounts and peers) is small and long-lived.
type Map struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock acquires the mutex for key and returns its unlock function.
func (m *Map) Lock(key string) func() {
	m.mu.Lock()
	if m.locks == nil {
		m.locks = make(map[string]*sync.Mutex)
	}
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Package syncutil holds small concurrency helpers shared by the
// executor and the workflows.
package syncutil

import "sync"

// KeyedMutex serializes callers per string key. Entries are kept for
// the life of the process; the key space (live aggregate partitions,
// group ids) is small enough that eviction is not worth the complexity.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

package services

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedLock - мьютекс на ключ. Запись живёт, пока её держат или ждут, и удаляется
// последним освободившим, поэтому карта не растёт от брошенных форм.
type keyedLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func newKeyedLock() *keyedLock {
	return &keyedLock{entries: make(map[string]*lockEntry)}
}

func (k *keyedLock) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedLock) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

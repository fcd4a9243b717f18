package common

import "sync"

// KeyedMutex hands out one mutex per key. Entries are reference counted and
// dropped when the last holder unlocks, so the map only holds keys in use.
type KeyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func NewKeyedMutex[K comparable]() *KeyedMutex[K] {
	return &KeyedMutex[K]{locks: make(map[K]*refMutex)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *KeyedMutex[K]) Lock(key K) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Len reports how many keys are currently held or awaited.
func (k *KeyedMutex[K]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// KeyedRWMutex is the read/write variant of KeyedMutex.
type KeyedRWMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*refRWMutex
}

type refRWMutex struct {
	sync.RWMutex
	refs int
}

func NewKeyedRWMutex[K comparable]() *KeyedRWMutex[K] {
	return &KeyedRWMutex[K]{locks: make(map[K]*refRWMutex)}
}

func (k *KeyedRWMutex[K]) acquire(key K) *refRWMutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &refRWMutex{}
		k.locks[key] = m
	}
	m.refs++
	return m
}

func (k *KeyedRWMutex[K]) release(key K, m *refRWMutex) {
	k.mu.Lock()
	defer k.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(k.locks, key)
	}
}

// Lock takes key exclusively.
func (k *KeyedRWMutex[K]) Lock(key K) func() {
	m := k.acquire(key)
	m.Lock()
	return func() {
		m.Unlock()
		k.release(key, m)
	}
}

// RLock takes key shared.
func (k *KeyedRWMutex[K]) RLock(key K) func() {
	m := k.acquire(key)
	m.RLock()
	return func() {
		m.RUnlock()
		k.release(key, m)
	}
}

package lock

import (
	"fmt"
	"sync"
)

// KeyedMutex serializes operations on a single entity: callers locking
// the same key run one at a time, callers on different keys run
// concurrently. Keys are reference-counted so the map does not grow
// with every entity ever touched.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*keyLock),
	}
}

func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
}

func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		panic("lock: unlock of unlocked key " + key)
	}
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	l.mu.Unlock()
}

// UserKey, BookingKey and LocationKey build the lock keys used across
// services, one namespace per entity kind.
func UserKey(id int64) string     { return fmt.Sprintf("user:%d", id) }
func BookingKey(id int64) string  { return fmt.Sprintf("booking:%d", id) }
func LocationKey(id int64) string { return fmt.Sprintf("location:%d", id) }

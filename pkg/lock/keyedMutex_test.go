package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("booking:1")
			defer km.Unlock("booking:1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("user:1")
	defer km.Unlock("user:1")

	// Другой ключ не должен блокироваться
	done := make(chan struct{})
	go func() {
		km.Lock("user:2")
		km.Unlock("user:2")
		close(done)
	}()

	<-done
}

// TestKeyedMutexReleasesEntries проверяет, что карта ключей не растет
// после снятия всех блокировок
func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := NewKeyedMutex()

	for i := 0; i < 100; i++ {
		km.Lock(UserKey(int64(i)))
		km.Unlock(UserKey(int64(i)))
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}

func TestKeyedMutexUnlockPanics(t *testing.T) {
	km := NewKeyedMutex()

	assert.Panics(t, func() {
		km.Unlock("booking:42")
	})
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "user:7", UserKey(7))
	assert.Equal(t, "booking:7", BookingKey(7))
	assert.Equal(t, "location:7", LocationKey(7))

	// Пространства имен не пересекаются
	assert.NotEqual(t, UserKey(7), BookingKey(7))
}

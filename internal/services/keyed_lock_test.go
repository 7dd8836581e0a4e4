package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLock_SerializesAndForgetsReleasedKeys(t *testing.T) {
	locks := newKeyedLock()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("form-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.size(), "освобождённые ключи не остаются в карте")
}

func TestKeyedLock_SameEntryWhileHeld(t *testing.T) {
	locks := newKeyedLock()

	unlock := locks.Lock("form-1")
	acquired := make(chan struct{})
	go func() {
		release := locks.Lock("form-1")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("второй держатель получил ключ, пока первый его держит")
	default:
	}
	assert.Equal(t, 1, locks.size())

	unlock()
	<-acquired
	assert.Zero(t, locks.size())
}

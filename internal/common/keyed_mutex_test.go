package common

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex[string]()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("a")
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("Expected at most one holder, saw %d", maxSeen)
	}
	if km.Len() != 0 {
		t.Errorf("Expected map to be empty after unlock, got %d", km.Len())
	}
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex[int]()
	unlockA := km.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := km.Lock(2)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedRWMutex_WriterExcludesReaders(t *testing.T) {
	km := NewKeyedRWMutex[string]()

	r1 := km.RLock("e")
	r2 := km.RLock("e") // shared holders coexist

	acquired := make(chan struct{})
	go func() {
		unlock := km.Lock("e")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired while readers held the key")
	case <-time.After(20 * time.Millisecond):
	}

	r1()
	r2()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("writer never acquired after readers released")
	}
}

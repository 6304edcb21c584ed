package runtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	req := require.New(t)
	locks := NewKeyedMutex[int]()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(1)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	req.Equal(100, counter)
	req.Zero(locks.Len())
}

func TestKeyedMutex_OtherKeysDoNotWait(t *testing.T) {
	req := require.New(t)
	locks := NewKeyedMutex[int]()

	// Given key 1 held
	unlock := locks.Lock(1)
	defer unlock()

	// When key 2 is requested
	acquired := make(chan struct{})
	go func() {
		release := locks.Lock(2)
		release()
		close(acquired)
	}()

	// Then it is granted without waiting for key 1
	select {
	case <-acquired:
	case <-time.After(time.Second):
		req.Fail("independent key should not block")
	}
}

func TestKeyedMutex_UnlockTwiceIsSafe(t *testing.T) {
	req := require.New(t)
	locks := NewKeyedMutex[string]()

	unlock := locks.Lock("a")
	unlock()
	unlock()

	req.Zero(locks.Len())
	release := locks.Lock("a")
	release()
}

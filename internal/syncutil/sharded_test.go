package syncutil

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShardedMutexSerializesPerKey(t *testing.T) {
	var m ShardedMutex
	key := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock(key)
			defer m.Unlock(key)
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestShardedMutexStableMapping(t *testing.T) {
	var m ShardedMutex
	key := uuid.New()
	assert.Same(t, m.shard(key), m.shard(key))
}

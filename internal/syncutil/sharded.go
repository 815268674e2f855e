// Package syncutil provides small concurrency helpers.
package syncutil

import (
	"sync"

	"github.com/google/uuid"
)

const shardCount = 64

// ShardedMutex serializes work per key with a fixed pool of mutexes. Distinct
// keys may share a shard; the same key always maps to the same shard.
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

func (s *ShardedMutex) shard(key uuid.UUID) *sync.Mutex {
	var h uint32
	for _, b := range key {
		h = h*31 + uint32(b)
	}
	return &s.shards[h%shardCount]
}

// Lock acquires the shard for key.
func (s *ShardedMutex) Lock(key uuid.UUID) {
	s.shard(key).Lock()
}

// Unlock releases the shard for key.
func (s *ShardedMutex) Unlock(key uuid.UUID) {
	s.shard(key).Unlock()
}

package counter

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/segmentio/fasthash/fnv1a"
)

const defaultShardCount uint64 = 64

// MemoryStorage keeps counters in process memory. The key space is split in
// shards, each one guarded by its own lock, so a key is always served by the
// same lock.
type MemoryStorage struct {
	shardCount      uint64
	shardedCounters []map[string]int64
	shardedMutexes  []*sync.RWMutex
}

// NewMemoryStorage creates a memory storage with the given number of shards
func NewMemoryStorage(shards uint64) *MemoryStorage {
	if shards == 0 {
		shards = defaultShardCount
	}

	s := &MemoryStorage{
		shardCount:      shards,
		shardedCounters: make([]map[string]int64, shards),
		shardedMutexes:  make([]*sync.RWMutex, shards),
	}

	// initialize shards
	for i := uint64(0); i < shards; i++ {
		s.shardedCounters[i] = make(map[string]int64)
		s.shardedMutexes[i] = &sync.RWMutex{}
	}

	return s
}

// Increment creates the counter at zero when needed and adds one to it.
// The whole read-modify-read runs under a single shard lock acquisition.
func (s *MemoryStorage) Increment(ctx context.Context, key string) (int64, error) {
	shard := s.shard(key)
	mux := s.shardedMutexes[shard]
	mux.Lock()
	defer mux.Unlock()

	counters := s.shardedCounters[shard]
	if _, ok := counters[key]; !ok {
		counters[key] = 0
	}
	counters[key]++

	value, ok := counters[key]
	if !ok {
		return 0, errors.Wrapf(ErrLostCounter, "memory storage increment (key %q)", key)
	}

	return value, nil
}

// Get returns the counter value, or ErrNonExistingCounter when the key was
// never incremented
func (s *MemoryStorage) Get(ctx context.Context, key string) (int64, error) {
	shard := s.shard(key)
	mux := s.shardedMutexes[shard]
	mux.RLock()
	defer mux.RUnlock()

	value, ok := s.shardedCounters[shard][key]
	if !ok {
		return 0, ErrNonExistingCounter
	}

	return value, nil
}

func (s *MemoryStorage) shard(key string) uint64 {
	return fnv1a.HashString64(key) % s.shardCount
}

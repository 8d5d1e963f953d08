package counter

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_Increment(t *testing.T) {
	testCases := []struct {
		desc         string
		key          string
		preIncrement int
		want         int64
	}{
		{
			desc: "Non existing key, initializes counter at one",
			key:  "alice",
			want: 1,
		},
		{
			desc:         "Existing key, increments counter",
			key:          "alice",
			preIncrement: 4,
			want:         5,
		},
		{
			desc: "Empty key is a regular key",
			key:  "",
			want: 1,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			s := NewMemoryStorage(defaultShardCount)
			for i := 0; i < tC.preIncrement; i++ {
				_, err := s.Increment(context.Background(), tC.key)
				require.NoError(t, err)
			}

			got, err := s.Increment(context.Background(), tC.key)

			require.NoError(t, err)
			assert.Equal(t, tC.want, got)
		})
	}
}

func TestMemoryStorage_Get(t *testing.T) {
	testCases := []struct {
		desc         string
		preIncrement int
		want         int64
		err          error
	}{
		{
			desc: "Non existing counter",
			err:  ErrNonExistingCounter,
		},
		{
			desc:         "Valid counter",
			preIncrement: 1,
			want:         1,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			s := NewMemoryStorage(defaultShardCount)
			for i := 0; i < tC.preIncrement; i++ {
				s.Increment(context.Background(), "key")
			}

			got, err := s.Get(context.Background(), "key")

			assert.Equal(t, tC.want, got)
			assert.Equal(t, tC.err, err)
		})
	}
}

func TestMemoryStorage_SingleShard(t *testing.T) {
	s := NewMemoryStorage(1)
	ctx := context.Background()

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Increment(ctx, key)
			}
		}(fmt.Sprintf("key-%d", i))
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		got, err := s.Get(ctx, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		assert.Equal(t, int64(50), got)
	}
}

func TestMemoryStorage_ZeroShardsUsesDefault(t *testing.T) {
	s := NewMemoryStorage(0)
	assert.Equal(t, defaultShardCount, s.shardCount)
}

func TestMemoryStorage_SameKeySameShard(t *testing.T) {
	s := NewMemoryStorage(defaultShardCount)
	assert.Equal(t, s.shard("visitor"), s.shard("visitor"))

	s.Increment(context.Background(), "visitor")
	_, ok := s.shardedCounters[s.shard("visitor")]["visitor"]
	assert.True(t, ok)
}

func TestMemoryStorage_GetDoesNotCreate(t *testing.T) {
	s := NewMemoryStorage(defaultShardCount)
	ctx := context.Background()

	_, err := s.Get(ctx, "ghost")
	assert.True(t, errors.Is(err, ErrNonExistingCounter))

	got, err := s.Increment(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func BenchmarkMemoryStorage_Increment(b *testing.B) {
	s := NewMemoryStorage(defaultShardCount)
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Increment(ctx, fmt.Sprintf("key-%d", i%128))
			i++
		}
	})
}

package cache

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/lrukcache/policy"
	"github.com/IvanBrykalov/lrukcache/policy/lru"
	"github.com/IvanBrykalov/lrukcache/policy/lruk"
)

// A mixed workload of concurrent Put/Get/Remove on random keys.
// Should pass under `-race` without detector reports, and no shard may
// ever exceed its share of the capacity.
func TestRace_MixedWorkload(t *testing.T) {
	for name, pol := range map[string]policy.Policy[string, []byte]{
		"lru":  lru.Policy[string, []byte](),
		"lruk": lruk.Policy[string, []byte](512, 2),
	} {
		t.Run(name, func(t *testing.T) {
			const capacity, shards = 8_192, 32
			c := New[string, []byte](Options[string, []byte]{
				Capacity: capacity,
				Shards:   shards,
				Policy:   pol,
			})
			t.Cleanup(func() { _ = c.Close() })

			workers := 4 * runtime.GOMAXPROCS(0)
			keyspace := 50_000
			deadline := time.Now().Add(500 * time.Millisecond)

			var g errgroup.Group
			for w := 0; w < workers; w++ {
				id := w
				g.Go(func() error {
					r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
					for time.Now().Before(deadline) {
						k := "k:" + strconv.Itoa(r.Intn(keyspace))
						switch r.Intn(100) {
						case 0, 1, 2, 3, 4: // ~5% Remove
							c.Remove(k)
						case 5, 6, 7, 8, 9, 10, 11, 12, 13, 14: // ~10% Put
							c.Put(k, []byte("x"))
						default: // ~85% Get
							c.Get(k)
						}
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())

			perShard := capacity / shards
			for i, n := range c.ShardLens() {
				require.LessOrEqual(t, n, perShard, "shard %d", i)
			}
		})
	}
}

// One hundred goroutines call GetOrLoad on the same key concurrently.
// The Loader should run at most once (singleflight coalescing).
func TestRace_GetOrLoad(t *testing.T) {
	var calls atomic.Int64

	c := New[string, string](Options[string, string]{
		Capacity: 1024,
		Loader: func(_ context.Context, k string) (string, error) {
			calls.Add(1)
			time.Sleep(2 * time.Millisecond) // simulate I/O
			return "v:" + k, nil
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	const goroutines = 100
	key := "same-key"

	start := make(chan struct{})
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			<-start
			v, err := c.GetOrLoad(ctx, key)
			if err != nil {
				return err
			}
			assert.Equal(t, "v:"+key, v)
			return nil
		})
	}

	close(start)
	require.NoError(t, g.Wait())

	require.LessOrEqual(t, calls.Load(), int64(1), "loader should run at most once")

	// Subsequent call should be a pure cache hit.
	v, err := c.GetOrLoad(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "v:"+key, v)
}

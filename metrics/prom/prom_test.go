package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/lrukcache/cache"
	"github.com/IvanBrykalov/lrukcache/policy"
	"github.com/IvanBrykalov/lrukcache/policy/lru"
	"github.com/IvanBrykalov/lrukcache/policy/lruk"
)

func TestAdapter_LRU(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "lrukcache", "test", prometheus.Labels{"app": "unit"})

	c := lru.NewWithOptions(lru.Options[string, int]{Capacity: 2, Metrics: m})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts a
	c.Get("b")
	c.Get("a")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("capacity")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.resident))

	c.Remove("b")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resident))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestAdapter_LRUKPromotionsAndHistory(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "lrukcache", "test", nil)

	c := lruk.NewWithOptions(lruk.Options[int, int]{
		HotCapacity:     4,
		HistoryCapacity: 1,
		K:               2,
		Metrics:         m,
	})
	c.Put(1, 10)
	c.Put(2, 20) // history holds one count: 1's is forgotten
	c.Put(2, 21) // promotes 2

	assert.Equal(t, 1.0, testutil.ToFloat64(m.promotions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues(policy.EvictHistory.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resident))
}

func TestAdapter_SharedAcrossShards(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "", "", nil)

	c := cache.New[int, int](cache.Options[int, int]{Capacity: 64, Shards: 4, Metrics: m})
	for i := 0; i < 10; i++ {
		c.Put(i, i)
	}
	assert.Equal(t, float64(c.Len()), testutil.ToFloat64(m.resident))
}

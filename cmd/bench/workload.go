package main

import (
	"context"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/lrukcache/cache"
	"github.com/IvanBrykalov/lrukcache/internal/util"
	"github.com/IvanBrykalov/lrukcache/policy"
	"github.com/IvanBrykalov/lrukcache/policy/lru"
	"github.com/IvanBrykalov/lrukcache/policy/lruk"
)

// result is what one benchmark run observed.
type result struct {
	Elapsed time.Duration
	Ops     uint64
	Reads   uint64
	Writes  uint64
	Hits    uint64
	Misses  uint64
	Len     int
	Stats   policy.Stats
}

func (r result) HitRate() float64 {
	if r.Reads == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Reads)
}

func (r result) OpsPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

// benchCache is the surface the workload drives.
type benchCache interface {
	policy.Cache[string, string]
	Stats() policy.Stats
}

// buildCache constructs the cache under test from cfg.
func buildCache(cfg Config, m policy.Metrics) benchCache {
	switch cfg.Policy {
	case "lru":
		return lru.NewWithOptions(lru.Options[string, string]{
			Capacity: cfg.Capacity,
			Metrics:  m,
		})
	case "lruk":
		return lruk.NewWithOptions(lruk.Options[string, string]{
			HotCapacity:     cfg.Capacity,
			HistoryCapacity: cfg.History,
			K:               cfg.K,
			Metrics:         m,
		})
	default:
		opt := cache.Options[string, string]{
			Capacity: cfg.Capacity,
			Shards:   cfg.Shards,
			Metrics:  m,
		}
		if cfg.ShardPolicy == "lruk" {
			n := cfg.Shards
			if n <= 0 {
				n = util.HostParallelism()
			}
			opt.Policy = lruk.Policy[string, string](util.CeilDiv(cfg.History, n), cfg.K)
		}
		return cache.New(opt)
	}
}

// runWorkload preloads c and then drives a Zipf-distributed read/write mix
// from cfg.Workers goroutines until cfg.Duration elapses or ctx is done.
func runWorkload(ctx context.Context, c benchCache, cfg Config) (result, error) {
	for i := 0; i < cfg.Preload; i++ {
		k := "k:" + strconv.Itoa(i)
		c.Put(k, "v"+strconv.Itoa(i))
	}

	var reads, writes, hits, misses atomic.Uint64

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	start := time.Now()
	for w := 0; w < cfg.Workers; w++ {
		id := int64(w)
		g.Go(func() error {
			// rand.Rand is not goroutine-safe: one RNG and Zipf per worker.
			r := rand.New(rand.NewSource(cfg.Seed + id*9973))
			zipf := rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, cfg.Keys-1)
			key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}

				if int(r.Int31n(100)) < cfg.ReadPct {
					reads.Add(1)
					if _, ok := c.Get(key()); ok {
						hits.Add(1)
					} else {
						misses.Add(1)
					}
				} else {
					writes.Add(1)
					c.Put(key(), "v"+strconv.Itoa(r.Int()))
				}
			}
		})
	}
	err := g.Wait()

	res := result{
		Elapsed: time.Since(start),
		Reads:   reads.Load(),
		Writes:  writes.Load(),
		Hits:    hits.Load(),
		Misses:  misses.Load(),
		Len:     c.Len(),
		Stats:   c.Stats(),
	}
	res.Ops = res.Reads + res.Writes
	return res, err
}

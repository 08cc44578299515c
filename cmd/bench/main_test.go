package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmet "github.com/IvanBrykalov/lrukcache/metrics/prom"
)

func TestLoadConfig_EnvThenFlags(t *testing.T) {
	t.Setenv("BENCH_POLICY", "lruk")
	t.Setenv("BENCH_CAPACITY", "400")
	t.Setenv("BENCH_K", "3")

	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "lruk", cfg.Policy)
	assert.Equal(t, 400, cfg.Capacity)
	assert.Equal(t, 3, cfg.K)
	assert.Equal(t, 100, cfg.History, "history defaults to capacity/4")
	assert.Equal(t, 200, cfg.Preload, "preload defaults to capacity/2")
	assert.Positive(t, cfg.Workers)

	cfg, err = loadConfig([]string{"-policy", "sharded", "-cap", "64", "-k", "2"})
	require.NoError(t, err)
	assert.Equal(t, "sharded", cfg.Policy)
	assert.Equal(t, 64, cfg.Capacity)
	assert.Equal(t, 2, cfg.K)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig([]string{"-policy", "2q"})
	assert.ErrorIs(t, err, ErrUnknownPolicy)

	_, err = loadConfig([]string{"-shard-policy", "arc"})
	assert.ErrorIs(t, err, ErrUnknownPolicy)

	_, err = loadConfig([]string{"-reads", "101"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = loadConfig([]string{"-zipf_s", "1"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "json", "warn")
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])

	_, err = newLogger(&buf, "xml", "info")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = newLogger(&buf, "text", "loud")
	assert.Error(t, err)
}

func TestRunWorkload_AllPolicies(t *testing.T) {
	for _, tc := range []struct{ policy, shardPolicy string }{
		{"lru", "lru"},
		{"lruk", "lru"},
		{"sharded", "lru"},
		{"sharded", "lruk"},
	} {
		t.Run(tc.policy+"/"+tc.shardPolicy, func(t *testing.T) {
			cfg := Config{
				Policy:      tc.policy,
				ShardPolicy: tc.shardPolicy,
				Capacity:    256,
				Shards:      4,
				K:           2,
				Workers:     4,
				Duration:    50 * time.Millisecond,
				ReadPct:     70,
				Keys:        4096,
				ZipfS:       1.1,
				ZipfV:       1,
				Seed:        7,
			}
			cfg.applyDefaults()
			require.NoError(t, cfg.validate())

			m := pmet.New(prometheus.NewRegistry(), "", "", nil)
			c := buildCache(cfg, m)
			res, err := runWorkload(context.Background(), c, cfg)
			require.NoError(t, err)

			assert.Positive(t, res.Ops)
			assert.Equal(t, res.Reads+res.Writes, res.Ops)
			assert.Equal(t, res.Reads, res.Hits+res.Misses)
			assert.LessOrEqual(t, res.Len, cfg.Capacity)
			assert.GreaterOrEqual(t, res.HitRate(), 0.0)
			assert.LessOrEqual(t, res.HitRate(), 1.0)
		})
	}
}

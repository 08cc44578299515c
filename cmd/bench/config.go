package main

import (
	"errors"
	"flag"
	"fmt"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the benchmark configuration. Values come from the environment
// (and an optional .env file) first; command-line flags override them.
//
// Policy selects the cache under test (lru, lruk or sharded) and ShardPolicy
// the policy of each shard. Zero Shards, History, Workers and Preload pick
// host parallelism, Capacity/4, 2*GOMAXPROCS and Capacity/2. An empty
// MetricsAddr disables the metrics endpoint.
type Config struct {
	Policy      string `env:"BENCH_POLICY" envDefault:"sharded"`
	ShardPolicy string `env:"BENCH_SHARD_POLICY" envDefault:"lru"`
	Capacity    int    `env:"BENCH_CAPACITY" envDefault:"100000"`
	Shards      int    `env:"BENCH_SHARDS" envDefault:"0"`
	History     int    `env:"BENCH_HISTORY" envDefault:"0"`
	K           int    `env:"BENCH_K" envDefault:"2"`

	Workers  int           `env:"BENCH_WORKERS" envDefault:"0"`
	Duration time.Duration `env:"BENCH_DURATION" envDefault:"10s"`
	ReadPct  int           `env:"BENCH_READ_PCT" envDefault:"80"`
	Keys     uint64        `env:"BENCH_KEYS" envDefault:"1000000"`
	ZipfS    float64       `env:"BENCH_ZIPF_S" envDefault:"1.1"`
	ZipfV    float64       `env:"BENCH_ZIPF_V" envDefault:"1.0"`
	Seed     int64         `env:"BENCH_SEED" envDefault:"1"`
	Preload  int           `env:"BENCH_PRELOAD" envDefault:"0"`

	PprofAddr   string `env:"BENCH_PPROF_ADDR"`
	MetricsAddr string `env:"BENCH_METRICS_ADDR" envDefault:":8080"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Configuration errors.
var (
	ErrUnknownPolicy = errors.New("unknown policy")
	ErrInvalidConfig = errors.New("invalid config")
)

// loadConfig reads the environment, then applies args as flag overrides.
func loadConfig(args []string) (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "cache under test: lru | lruk | sharded")
	fs.StringVar(&cfg.ShardPolicy, "shard-policy", cfg.ShardPolicy, "policy of each shard: lru | lruk")
	fs.IntVar(&cfg.Capacity, "cap", cfg.Capacity, "cache capacity (entries)")
	fs.IntVar(&cfg.Shards, "shards", cfg.Shards, "number of shards (0=auto)")
	fs.IntVar(&cfg.History, "history", cfg.History, "LRU-K history capacity (0=cap/4)")
	fs.IntVar(&cfg.K, "k", cfg.K, "LRU-K admission threshold")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines (0=2*GOMAXPROCS)")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "benchmark duration")
	fs.IntVar(&cfg.ReadPct, "reads", cfg.ReadPct, "read percentage [0..100]")
	fs.Uint64Var(&cfg.Keys, "keys", cfg.Keys, "keyspace size")
	fs.Float64Var(&cfg.ZipfS, "zipf_s", cfg.ZipfS, "Zipf s > 1 (skew)")
	fs.Float64Var(&cfg.ZipfV, "zipf_v", cfg.ZipfV, "Zipf v >= 1")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.IntVar(&cfg.Preload, "preload", cfg.Preload, "preload entries (0=cap/2)")
	fs.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "serve pprof at addr (e.g. :6060); empty = disabled")
	fs.StringVar(&cfg.MetricsAddr, "http", cfg.MetricsAddr, "serve Prometheus metrics at addr; empty = disabled")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text | json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug | info | warn | error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 2 * runtime.GOMAXPROCS(0)
	}
	if c.History <= 0 {
		c.History = max(c.Capacity/4, 1)
	}
	if c.Preload <= 0 {
		c.Preload = c.Capacity / 2
	}
}

func (c Config) validate() error {
	switch c.Policy {
	case "lru", "lruk", "sharded":
	default:
		return fmt.Errorf("%w: %q (use lru, lruk or sharded)", ErrUnknownPolicy, c.Policy)
	}
	switch c.ShardPolicy {
	case "lru", "lruk":
	default:
		return fmt.Errorf("%w: shard policy %q (use lru or lruk)", ErrUnknownPolicy, c.ShardPolicy)
	}
	if c.ReadPct < 0 || c.ReadPct > 100 {
		return fmt.Errorf("%w: reads must be in [0..100], got %d", ErrInvalidConfig, c.ReadPct)
	}
	if c.ZipfS <= 1 || c.ZipfV < 1 {
		return fmt.Errorf("%w: zipf needs s > 1 and v >= 1", ErrInvalidConfig)
	}
	if c.Keys == 0 {
		return fmt.Errorf("%w: keys must be > 0", ErrInvalidConfig)
	}
	return nil
}

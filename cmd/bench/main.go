// Command bench runs a synthetic Zipf workload against an LRU, LRU-K or
// sharded cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pmet "github.com/IvanBrykalov/lrukcache/metrics/prom"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	log, err := newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go serve(log, "pprof", cfg.PprofAddr, http.DefaultServeMux)
	}

	// ---- Prometheus metrics ----
	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, "lrukcache", "bench", prometheus.Labels{"policy": cfg.Policy})
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go serve(log, "metrics", cfg.MetricsAddr, mux)
	}

	c := buildCache(cfg, metrics)
	log.Info("starting workload",
		slog.String("policy", cfg.Policy),
		slog.String("shard_policy", cfg.ShardPolicy),
		slog.Int("capacity", cfg.Capacity),
		slog.Int("shards", cfg.Shards),
		slog.Int("k", cfg.K),
		slog.Int("workers", cfg.Workers),
		slog.Duration("duration", cfg.Duration),
		slog.Int64("seed", cfg.Seed),
	)

	res, err := runWorkload(ctx, c, cfg)
	if err != nil {
		return fmt.Errorf("workload: %w", err)
	}

	log.Info("workload finished",
		slog.Duration("elapsed", res.Elapsed.Round(time.Millisecond)),
		slog.Uint64("ops", res.Ops),
		slog.Float64("ops_per_sec", res.OpsPerSec()),
		slog.Uint64("reads", res.Reads),
		slog.Uint64("writes", res.Writes),
		slog.Float64("hit_rate", res.HitRate()),
		slog.Int("len", res.Len),
		slog.Uint64("evictions", res.Stats.Evictions),
		slog.Uint64("promotions", res.Stats.Promotions),
		slog.Uint64("forgotten", res.Stats.Forgotten),
	)
	return nil
}

func serve(log *slog.Logger, name, addr string, h http.Handler) {
	log.Info("serving", slog.String("endpoint", name), slog.String("addr", addr))
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", slog.String("endpoint", name), slog.Any("error", err))
	}
}

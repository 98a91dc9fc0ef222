package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	IngestCycles          atomic.Int64
	IngestFailures        atomic.Int64
	SuppressedFailures    atomic.Int64
	StaleResultsDiscarded atomic.Int64
	FetchRequests         atomic.Int64
	FetchErrors           atomic.Int64
	CacheHits             atomic.Int64
	CacheMisses           atomic.Int64
	CacheReadErrors       atomic.Int64
	CacheWriteErrors      atomic.Int64
	Mutations             atomic.Int64
	MutationErrors        atomic.Int64
	MutationRetries       atomic.Int64
}

var metricKeys = []string{
	"ingest_cycles", "ingest_failures", "suppressed_failures", "stale_results_discarded",
	"fetch_requests", "fetch_errors",
	"cache_hits", "cache_misses", "cache_read_errors", "cache_write_errors",
	"mutations", "mutation_errors", "mutation_retries",
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"ingest_cycles":           metrics.IngestCycles.Load(),
		"ingest_failures":         metrics.IngestFailures.Load(),
		"suppressed_failures":     metrics.SuppressedFailures.Load(),
		"stale_results_discarded": metrics.StaleResultsDiscarded.Load(),
		"fetch_requests":          metrics.FetchRequests.Load(),
		"fetch_errors":            metrics.FetchErrors.Load(),
		"cache_hits":              metrics.CacheHits.Load(),
		"cache_misses":            metrics.CacheMisses.Load(),
		"cache_read_errors":       metrics.CacheReadErrors.Load(),
		"cache_write_errors":      metrics.CacheWriteErrors.Load(),
		"mutations":               metrics.Mutations.Load(),
		"mutation_errors":         metrics.MutationErrors.Load(),
		"mutation_retries":        metrics.MutationRetries.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}

// go_clip — YouTube clipping board over a Google Sheet.
//
// Ingests clip rows from the sheet (Apps Script JSON, Visualization feed, CSV
// or workbook export), keeps the last good copy in a local cache, and serves
// it as an HTML board on VIEW_PORT and as MCP tools on MCP_PORT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_clip/internal/clipserver"
	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/viewer"
)

var (
	version  = "dev"
	mcpPort  = env.Str("MCP_PORT", "8891")
	viewPort = env.Str("VIEW_PORT", "8892")
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()})))

	cfg := loadConfig()
	src, err := engine.NewSource(cfg)
	if err != nil {
		slog.Error("invalid source configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := engine.OpenCache(ctx, cfg)
	defer cache.Close()

	pipeline := engine.NewPipeline(src, cache, cfg)
	script := engine.NewScriptClient(cfg)

	slog.Info("starting go_clip",
		slog.String("source", src.Name()),
		slog.String("cache", cache.Backend()),
		slog.String("mcp_port", mcpPort),
		slog.String("view_port", viewPort),
		slog.Bool("mutations", script.Enabled()),
	)

	go func() {
		if err := pipeline.Run(ctx, nil); err != nil {
			slog.Warn("initial ingestion failed", slog.Any("error", err))
		}
	}()
	pipeline.StartScheduler(ctx, cfg.RefreshInterval)

	view := &http.Server{
		Addr:              ":" + viewPort,
		Handler:           viewer.NewServer(pipeline, script, cfg.PageSize),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		slog.Info("viewer listening", slog.String("addr", view.Addr))
		if err := view.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("viewer listen failed", slog.Any("error", err))
		}
	}()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_clip",
		Version: version,
	}, nil)

	clipserver.RegisterTools(server, clipserver.Deps{Store: pipeline, Script: script, PageSize: cfg.PageSize})
	slog.Info("tools registered", slog.Int("count", clipserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_clip",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := view.Shutdown(shutdownCtx); err != nil {
		slog.Warn("viewer graceful shutdown failed", slog.Any("error", err))
		_ = view.Close()
	}
	pipeline.Wait()
	slog.Info("server stopped")
}

func loadConfig() engine.Config {
	return engine.Config{
		Source:            env.Str("SOURCE", engine.SourceCSV),
		ScriptURL:         env.Str("SCRIPT_URL", ""),
		SheetID:           env.Str("SHEET_ID", ""),
		SheetGID:          env.Str("SHEET_GID", ""),
		SheetName:         env.Str("SHEET_NAME", ""),
		SheetCSVURL:       env.Str("SHEET_CSV_URL", ""),
		FetchTimeout:      env.Duration("FETCH_TIMEOUT", 15*time.Second),
		CacheBackend:      env.Str("CACHE_BACKEND", engine.BackendSQLite),
		CacheKey:          env.Str("CACHE_KEY", engine.DefaultCacheKey),
		CachePath:         env.Str("CACHE_PATH", ""),
		RedisURL:          env.Str("REDIS_URL", ""),
		DatabaseURL:       env.Str("DATABASE_URL", ""),
		CacheWriteTimeout: env.Duration("CACHE_WRITE_TIMEOUT", 5*time.Second),
		RefreshInterval:   env.Duration("REFRESH_INTERVAL", 5*time.Minute),
		MutationRPS:       env.Float("MUTATION_RPS", 2),
		MutationBurst:     env.Int("MUTATION_BURST", 4),
		PageSize:          env.Int("PAGE_SIZE", 24),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

func logLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(env.Str("LOG_LEVEL", "info"))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

package engine

import (
	"net/http"
	"time"
)

// Source modes, one per revision of the fetch strategy.
const (
	SourceAPI  = "api"  // Apps Script GET returning a JSON array
	SourceGViz = "gviz" // public Visualization feed wrapped in setResponse(...)
	SourceCSV  = "csv"  // public CSV export
	SourceXLSX = "xlsx" // public workbook export, one tab read
)

// Cache backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DefaultCacheKey is the fixed key the last collection is stored under.
const DefaultCacheKey = "yt_clipping_cache"

// Config holds all engine configuration, injected from main.
type Config struct {
	Source       string // api, gviz, csv, xlsx
	ScriptURL    string // Apps Script web app (api reads + all mutations)
	SheetID      string
	SheetGID     string
	SheetName    string
	SheetCSVURL  string // overrides the derived CSV export URL
	FetchTimeout time.Duration

	CacheBackend      string
	CacheKey          string
	CachePath         string // sqlite file
	RedisURL          string
	DatabaseURL       string
	CacheWriteTimeout time.Duration

	RefreshInterval time.Duration // 0 disables scheduled cycles

	MutationRPS   float64
	MutationBurst int

	PageSize int

	HTTPClient *http.Client
}

// withDefaults fills zero values the engine cannot run without.
func (c Config) withDefaults() Config {
	if c.Source == "" {
		c.Source = SourceCSV
	}
	if c.CacheBackend == "" {
		c.CacheBackend = BackendSQLite
	}
	if c.CacheKey == "" {
		c.CacheKey = DefaultCacheKey
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.CacheWriteTimeout <= 0 {
		c.CacheWriteTimeout = 5 * time.Second
	}
	if c.MutationRPS <= 0 {
		c.MutationRPS = 2
	}
	if c.MutationBurst <= 0 {
		c.MutationBurst = 4
	}
	if c.PageSize <= 0 {
		c.PageSize = 24
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

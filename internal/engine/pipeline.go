package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/anatolykoptev/go_clip/internal/sheet"
)

// State is the ingestion state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Snapshot is a consistent copy of the pipeline state. Rows is owned by the
// caller.
type Snapshot struct {
	State     State            `json:"state"`
	Rows      sheet.Collection `json:"rows"`
	FromCache bool             `json:"from_cache"`
	Err       string           `json:"error,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Consumer receives ingestion signals. OnData may be called twice per cycle:
// once with cached rows and once with fresh ones.
type Consumer interface {
	OnLoading()
	OnData(s Snapshot)
	OnError(err error)
}

// NopConsumer ignores every signal; Snapshot carries the result.
type NopConsumer struct{}

func (NopConsumer) OnLoading()      {}
func (NopConsumer) OnData(Snapshot) {}
func (NopConsumer) OnError(error)   {}

// Pipeline owns the authoritative collection and runs ingestion cycles:
// cache read, remote fetch, cache write, error fallback.
type Pipeline struct {
	source       Source
	cache        *Cache
	key          string
	writeTimeout time.Duration

	mu        sync.RWMutex
	state     State
	rows      sheet.Collection
	fromCache bool
	lastErr   string
	updatedAt time.Time
	gen       uint64 // newest started cycle
	freshGen  uint64 // cycle whose fetched rows are installed, 0 = none
	version   uint64 // bumped whenever rows change
	patches   map[string]map[string]pendingPatch

	group   singleflight.Group
	writes  sync.WaitGroup
	writeMu sync.Mutex // serialises cache writes
	written uint64     // version last stored in the cache
}

// pendingPatch is a confirmed mutation that fetches started no later than
// gen may not reflect yet.
type pendingPatch struct {
	value string
	gen   uint64
}

// NewPipeline wires a source and cache under the configured cache key.
func NewPipeline(src Source, cache *Cache, cfg Config) *Pipeline {
	cfg = cfg.withDefaults()
	return &Pipeline{
		source:       src,
		cache:        cache,
		key:          cfg.CacheKey,
		writeTimeout: cfg.CacheWriteTimeout,
		state:        StateIdle,
	}
}

// Run performs one ingestion cycle. It returns an error only when the
// consumer was told about it, i.e. the fetch failed and no cached rows
// were available.
func (p *Pipeline) Run(ctx context.Context, consumer Consumer) error {
	if consumer == nil {
		consumer = NopConsumer{}
	}
	metrics.IngestCycles.Add(1)
	gen := p.begin()

	cached, hit := p.cache.Get(ctx, p.key)
	if hit {
		snap := p.applyCached(cached)
		slog.Info("ingest: served cached rows", slog.Int("rows", len(snap.Rows)))
		consumer.OnData(snap)
	} else if p.setLoading() {
		consumer.OnLoading()
	}
	servable := hit || p.hasRows()

	var fresh sheet.Collection
	err := TrackOperation(ctx, "fetch:"+p.source.Name(), func(ctx context.Context) error {
		var ferr error
		fresh, ferr = p.source.Fetch(ctx)
		return ferr
	})
	if err != nil {
		if servable {
			metrics.SuppressedFailures.Add(1)
			slog.Warn("ingest: background fetch failed, keeping available rows",
				slog.String("source", p.source.Name()), slog.Any("error", err))
			return nil
		}
		metrics.IngestFailures.Add(1)
		slog.Error("ingest: fetch failed", slog.String("source", p.source.Name()), slog.Any("error", err))
		p.fail(err)
		consumer.OnError(err)
		return err
	}

	snap, ok := p.applyFresh(gen, fresh)
	if !ok {
		metrics.StaleResultsDiscarded.Add(1)
		slog.Info("ingest: discarded result of superseded cycle", slog.Uint64("gen", gen))
		return nil
	}
	p.writeBehind()
	slog.Info("ingest: fetched fresh rows", slog.String("source", p.source.Name()), slog.Int("rows", len(fresh)))
	consumer.OnData(snap)
	return nil
}

// Refresh runs a cycle, collapsing concurrent callers onto one in-flight
// cycle. It returns the resulting snapshot.
func (p *Pipeline) Refresh(ctx context.Context) (Snapshot, error) {
	_, err, _ := p.group.Do("refresh", func() (any, error) {
		return nil, p.Run(context.WithoutCancel(ctx), NopConsumer{})
	})
	return p.Snapshot(), err
}

// StartScheduler refreshes every interval until ctx is done. A zero
// interval disables it.
func (p *Pipeline) StartScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := p.Refresh(ctx); err != nil {
					slog.Debug("scheduled refresh failed", slog.Any("error", err))
				}
			}
		}
	}()
}

// Snapshot returns a copy of the current state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

// Patch sets one field of the row with the given id after a confirmed
// server mutation and rewrites the cache entry. It reports whether the row
// exists.
//
// The patch is also kept until a cycle started after it installs rows, so a
// fetch already in flight cannot revert it.
func (p *Pipeline) Patch(id, field, value string) bool {
	p.mu.Lock()
	i := p.rows.Find(id)
	if i < 0 {
		p.mu.Unlock()
		return false
	}
	setField(&p.rows[i], field, value)
	if p.patches == nil {
		p.patches = make(map[string]map[string]pendingPatch)
	}
	if p.patches[id] == nil {
		p.patches[id] = make(map[string]pendingPatch)
	}
	p.patches[id][field] = pendingPatch{value: value, gen: p.gen}
	p.version++
	p.mu.Unlock()

	p.writeBehind()
	return true
}

// Wait blocks until pending cache writes finish.
func (p *Pipeline) Wait() {
	p.writes.Wait()
}

func (p *Pipeline) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	return p.gen
}

// applyCached installs cached rows unless fetched rows are already held,
// and returns what the consumer should show.
func (p *Pipeline) applyCached(rows sheet.Collection) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.freshGen == 0 {
		p.applyPatchesLocked(rows, 0)
		p.state = StateReady
		p.rows = rows
		p.fromCache = true
		p.lastErr = ""
		p.updatedAt = time.Now()
	}
	return p.snapshotLocked()
}

// applyFresh installs fetched rows of cycle gen unless a newer cycle has
// already installed its own.
func (p *Pipeline) applyFresh(gen uint64, rows sheet.Collection) (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen < p.freshGen {
		return Snapshot{}, false
	}
	p.applyPatchesLocked(rows, gen)
	p.version++
	p.state = StateReady
	p.rows = rows
	p.fromCache = false
	p.lastErr = ""
	p.updatedAt = time.Now()
	p.freshGen = gen
	return p.snapshotLocked(), true
}

// applyPatchesLocked re-applies confirmed patches to rows fetched by cycle
// gen. A patch made before that cycle started is already in the sheet and
// is dropped. gen 0 keeps every patch.
func (p *Pipeline) applyPatchesLocked(rows sheet.Collection, gen uint64) {
	for id, fields := range p.patches {
		i := rows.Find(id)
		for field, pp := range fields {
			if gen != 0 && gen > pp.gen {
				delete(fields, field)
				continue
			}
			if i >= 0 {
				setField(&rows[i], field, pp.value)
			}
		}
		if len(fields) == 0 {
			delete(p.patches, id)
		}
	}
}

func setField(r *sheet.Row, field, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[field] = value
}

func (p *Pipeline) hasRows() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == StateReady
}

func (p *Pipeline) setLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateReady {
		return false
	}
	p.state = StateLoading
	return true
}

func (p *Pipeline) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateReady {
		return // a concurrent cycle delivered rows meanwhile
	}
	p.state = StateFailed
	p.lastErr = err.Error()
	p.updatedAt = time.Now()
}

func (p *Pipeline) snapshotLocked() Snapshot {
	return Snapshot{
		State:     p.state,
		Rows:      p.rows.Clone(),
		FromCache: p.fromCache,
		Err:       p.lastErr,
		UpdatedAt: p.updatedAt,
	}
}

// writeBehind stores the current rows in the cache without holding up the
// caller. Writes run one at a time and each stores the rows as they are when
// it starts, so the last write always carries the newest version.
func (p *Pipeline) writeBehind() {
	p.writes.Add(1)
	go func() {
		defer p.writes.Done()
		p.writeMu.Lock()
		defer p.writeMu.Unlock()

		p.mu.RLock()
		version, rows := p.version, p.rows.Clone()
		p.mu.RUnlock()
		if version == p.written {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
		defer cancel()
		if !p.cache.Set(ctx, p.key, rows) {
			slog.Warn("ingest: cache write failed", slog.String("key", p.key))
			return
		}
		p.written = version
	}()
}

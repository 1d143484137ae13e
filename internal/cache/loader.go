package cache

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"runrate/internal/core"
	"runrate/internal/source"
)

// DefaultTTL is how long a loaded dataset is reused.
const DefaultTTL = time.Hour

// maxSources bounds the number of distinct source keys kept in memory.
const maxSources = 16

// Dataset is an immutable snapshot of one source.
type Dataset struct {
	Key       string
	Contracts []core.Contract
	LoadedAt  time.Time
}

// Age reports how old the snapshot is at now.
func (d Dataset) Age(now time.Time) time.Duration {
	return now.Sub(d.LoadedAt)
}

// Loader memoizes contract reads per source key for a fixed TTL. Concurrent
// misses on the same key share a single read. Failed reads are never cached.
type Loader struct {
	ttl     time.Duration
	entries *LRUCache[Dataset]
	group   singleflight.Group
	now     func() time.Time

	// generations counts invalidations per key. A read only stores its
	// result if no Invalidate happened while it ran.
	mu          sync.Mutex
	generations map[string]uint64
}

type LoaderOption func(*Loader)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// NewLoader creates a loader. A ttl <= 0 disables caching.
func NewLoader(ttl time.Duration, opts ...LoaderOption) *Loader {
	l := &Loader{
		ttl:         ttl,
		entries:     NewLRUCache[Dataset](maxSources, ttl),
		now:         time.Now,
		generations: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.entries.setClock(l.now)
	return l
}

// TTL returns the configured cache window.
func (l *Loader) TTL() time.Duration { return l.ttl }

// Load returns the cached dataset for r.Key() or reads it through r.
func (l *Loader) Load(ctx context.Context, r source.ContractReader) (Dataset, error) {
	key := r.Key()
	if l.ttl > 0 {
		if ds, ok := l.entries.Get(key); ok {
			return ds, nil
		}
	}

	v, err, shared := l.group.Do(key, func() (interface{}, error) {
		gen := l.generation(key)
		started := l.now()
		contracts, err := r.ReadContracts(context.WithoutCancel(ctx))
		if err != nil {
			return Dataset{}, err
		}
		ds := Dataset{Key: key, Contracts: slices.Clip(contracts), LoadedAt: l.now()}
		if l.ttl > 0 {
			l.storeIfCurrent(key, gen, ds)
		}
		slog.InfoContext(ctx, "Contracts loaded",
			"component", "cache",
			"source", key,
			"rows", len(contracts),
			"duration", l.now().Sub(started))
		return ds, nil
	})
	if err != nil {
		return Dataset{}, err
	}
	if shared {
		slog.DebugContext(ctx, "Contract load shared with concurrent caller", "component", "cache", "source", key)
	}
	return v.(Dataset), nil
}

// Invalidate drops the cached dataset for key so the next Load re-reads.
// A read already in flight still answers its callers but is not cached.
func (l *Loader) Invalidate(key string) {
	l.mu.Lock()
	l.generations[key]++
	l.entries.Delete(key)
	l.mu.Unlock()
	l.group.Forget(key)
}

func (l *Loader) generation(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generations[key]
}

func (l *Loader) storeIfCurrent(key string, gen uint64, ds Dataset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generations[key] != gen {
		slog.Debug("Discarding contracts read before invalidation", "component", "cache", "source", key)
		return
	}
	l.entries.Set(key, ds)
}

// CachedSources reports how many source snapshots are held in memory.
func (l *Loader) CachedSources() int { return l.entries.Len() }

// CleanExpired implements Cleaner.
func (l *Loader) CleanExpired() int {
	return l.entries.CleanExpired()
}

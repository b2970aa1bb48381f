package cache

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/seu-repo/fleetops/internal/observability/telemetry"
)

// Lookup is a process-lifetime memo table for remote lookups. Keys are
// composite (company-scoped) strings; a key is fetched from the remote
// API at most once per process, including keys the remote side has no
// value for, which are stored as the zero value.
//
// There is no eviction. The process is expected to live for one sync
// run; a long-lived deployment would need a bound here.
type Lookup[V any] struct {
	name string
	log  *zap.Logger

	mu      sync.RWMutex
	entries map[string]V

	// fetchMu serializes miss handling so a key is fetched at most once
	// per process even under concurrent batches.
	fetchMu sync.Mutex
}

// NewLookup creates an empty lookup cache. name labels it in metrics.
func NewLookup[V any](name string, log *zap.Logger) *Lookup[V] {
	return &Lookup[V]{
		name:    name,
		log:     log,
		entries: make(map[string]V),
	}
}

// GetOrFetchBatch returns the values for keys, satisfying as many as
// possible from the cache and delegating the rest to fetch in one bulk
// call. Duplicate keys are collapsed. Keys fetch does not return are
// cached as the zero value so they are never asked for again.
func (l *Lookup[V]) GetOrFetchBatch(ctx context.Context, keys []string, fetch func(ctx context.Context, missing []string) (map[string]V, error)) (map[string]V, error) {
	result := make(map[string]V, len(keys))
	missing := l.collect(keys, result)
	if len(missing) == 0 {
		return result, nil
	}

	l.fetchMu.Lock()
	defer l.fetchMu.Unlock()

	// A concurrent batch may have filled some keys while we waited.
	missing = l.collect(missing, result)
	if len(missing) == 0 {
		return result, nil
	}
	telemetry.LookupCacheHits.WithLabelValues(l.name, "miss").Add(float64(len(missing)))

	fetched, err := fetch(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("%s lookup: %w", l.name, err)
	}

	l.mu.Lock()
	for _, key := range missing {
		v, ok := fetched[key]
		if !ok {
			// Negative result: remember the absence too.
			var zero V
			v = zero
		}
		l.entries[key] = v
		result[key] = v
	}
	l.mu.Unlock()

	l.log.Debug("Lookup cache filled",
		zap.String("cache", l.name),
		zap.Int("fetched", len(missing)),
	)

	return result, nil
}

// collect moves every cached key into result and returns the keys still
// missing, deduplicated, in first-seen order.
func (l *Lookup[V]) collect(keys []string, result map[string]V) []string {
	var missing []string
	seen := make(map[string]bool, len(keys))

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, have := result[key]; have {
			continue
		}
		if v, ok := l.entries[key]; ok {
			result[key] = v
			telemetry.LookupCacheHits.WithLabelValues(l.name, "hit").Inc()
			continue
		}
		missing = append(missing, key)
	}
	return missing
}

// Len returns the number of cached entries.
func (l *Lookup[V]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

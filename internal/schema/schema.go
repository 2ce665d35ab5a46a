// Package schema resolves ordered table column lists through a cache and
// a chain of external lookup strategies.
//
// Resolution order under auto mode is cache, then the metastore catalog,
// then a spark-sql DESCRIBE invocation. The first strategy to return a
// non-empty column list wins and its result is persisted back into the
// cache in full. Column order always reflects the external source's
// declared ordinal positions; UPDATE rewrites bind positionally to that
// order.
package schema

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Mode selects which resolution sources are consulted.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeCache     Mode = "cache"
	ModeMetastore Mode = "metastore"
	ModeSparkSQL  Mode = "spark-sql"
)

// ParseMode validates a mode name from configuration or flags.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeCache, ModeMetastore, ModeSparkSQL:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown schema mode %q (want auto, cache, metastore or spark-sql)", s)
}

// Reason classifies a resolution failure.
type Reason string

const (
	ReasonNotCached      Reason = "not cached"
	ReasonStrategyFailed Reason = "strategy failed"
	ReasonUnresolvable   Reason = "unresolvable"
)

// ResolveError reports a failed column resolution for one table.
type ResolveError struct {
	Table  string
	Reason Reason
	Err    error
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("resolve schema for %s: %s", e.Table, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Strategy resolves ordered column names from an external source.
type Strategy interface {
	Name() string
	Columns(ctx context.Context, table string) ([]string, error)
}

// Resolver answers ordered column lists for tables, consulting the cache
// first and falling back to strategies in registration order. A mutex
// serializes load, mutate and persist so concurrent resolutions never
// drop a cached entry.
type Resolver struct {
	store      Store
	strategies []Strategy
	logger     *slog.Logger

	mu sync.Mutex
}

// NewResolver builds a resolver over the given cache store and
// strategies. If logger is nil, a discard logger is used.
func NewResolver(store Store, logger *slog.Logger, strategies ...Strategy) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{store: store, strategies: strategies, logger: logger}
}

// Resolve returns the ordered columns for table under the given mode.
// Cache hits return without touching any strategy; strategy successes are
// persisted to the cache before returning. Failures carry a typed
// ResolveError.
func (r *Resolver) Resolve(ctx context.Context, table string, mode Mode) ([]string, error) {
	key := strings.TrimSpace(table)

	r.mu.Lock()
	defer r.mu.Unlock()

	cache, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load schema cache: %w", err)
	}

	if mode == ModeAuto || mode == ModeCache {
		if cols := cache[key]; len(cols) > 0 {
			r.logger.Debug("schema cache hit", slog.String("table", key))
			return cols, nil
		}
		if mode == ModeCache {
			return nil, &ResolveError{Table: key, Reason: ReasonNotCached}
		}
	}

	var lastErr error
	for _, st := range r.strategies {
		if mode != ModeAuto && string(mode) != st.Name() {
			continue
		}
		cols, err := st.Columns(ctx, key)
		if err != nil {
			r.logger.Debug("schema strategy failed",
				slog.String("strategy", st.Name()),
				slog.String("table", key),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if len(cols) == 0 {
			continue
		}
		cache[key] = cols
		if err := r.store.Save(cache); err != nil {
			return nil, fmt.Errorf("persist schema cache: %w", err)
		}
		r.logger.Debug("schema resolved",
			slog.String("strategy", st.Name()),
			slog.String("table", key),
			slog.Int("columns", len(cols)))
		return cols, nil
	}

	if mode != ModeAuto {
		return nil, &ResolveError{Table: key, Reason: ReasonStrategyFailed, Err: lastErr}
	}
	return nil, &ResolveError{Table: key, Reason: ReasonUnresolvable, Err: lastErr}
}

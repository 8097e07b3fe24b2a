package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chess-tracker/internal/domain"
)

// Store is the persistence contract the cache depends on. Get reports
// absence without error; both operations may fail without consequence for
// callers of the cache.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Entry is the persisted payload. RefreshKey is the UTC calendar day the
// entry was computed on; the entry is valid only on that day.
type Entry struct {
	RefreshKey string               `json:"refresh_key"`
	History    domain.HistorySeries `json:"history"`
	SavedAt    int64                `json:"saved_at"`
}

type lookup int

const (
	lookupHit lookup = iota
	lookupMissAbsent
	lookupMissStale
	lookupMissCorrupt
	lookupMissUnavailable
)

func (l lookup) String() string {
	switch l {
	case lookupHit:
		return "hit"
	case lookupMissAbsent:
		return "miss-absent"
	case lookupMissStale:
		return "miss-stale"
	case lookupMissCorrupt:
		return "miss-corrupt"
	default:
		return "miss-unavailable"
	}
}

// DayCache wraps the history pipeline behind a per-handle entry that is
// valid for the current UTC calendar day only. Every read fault collapses
// to a miss; write faults are swallowed and the computed result is still
// returned.
type DayCache struct {
	store  Store
	prefix string
	now    func() time.Time
	logger zerolog.Logger
}

func NewDayCache(store Store, prefix string, now func() time.Time, logger zerolog.Logger) *DayCache {
	return &DayCache{store: store, prefix: prefix, now: now, logger: logger}
}

func (c *DayCache) key(handle string) string {
	return c.prefix + strings.ToLower(handle)
}

func (c *DayCache) today() string {
	return c.now().UTC().Format("2006-01-02")
}

// GetOrCompute returns the cached series when a valid entry for today
// exists, otherwise runs compute and persists the result best-effort.
func (c *DayCache) GetOrCompute(ctx context.Context, handle string, compute func(context.Context) (domain.HistorySeries, error)) (domain.HistorySeries, error) {
	key := c.key(handle)
	today := c.today()

	history, state := c.read(ctx, key, today)
	c.logger.Debug().Str("key", key).Stringer("lookup", state).Msg("cache lookup")
	if state == lookupHit {
		return history, nil
	}

	computed, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	c.write(ctx, key, today, computed)
	return computed, nil
}

func (c *DayCache) read(ctx context.Context, key, today string) (domain.HistorySeries, lookup) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, lookupMissUnavailable
	}
	if !ok {
		return nil, lookupMissAbsent
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, lookupMissCorrupt
	}
	if entry.History == nil {
		return nil, lookupMissCorrupt
	}
	if entry.RefreshKey != today {
		return nil, lookupMissStale
	}
	return entry.History, lookupHit
}

func (c *DayCache) write(ctx context.Context, key, today string, history domain.HistorySeries) {
	if history == nil {
		// an empty series must round-trip as [] so it reads back as valid
		history = domain.HistorySeries{}
	}

	entry := Entry{
		RefreshKey: today,
		History:    history,
		SavedAt:    c.now().Unix(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}
	if err := c.store.Set(ctx, key, string(raw)); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to persist cache entry")
	}
}

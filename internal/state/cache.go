package state

import (
	"slices"
	"sync"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
)

// Batch is the outcome of one batch fetch cycle.
type Batch struct {
	Signals   *SignalSet
	Failures  []*core.FetchError
	Requested int
}

// AllFailed reports whether symbols were requested and none succeeded.
func (b Batch) AllFailed() bool {
	return b.Requested > 0 && b.Signals.Len() == 0
}

// Cache is the committed signal state. Each batch replaces the set
// wholesale; a failed symbol keeps its previous record, and records are
// dropped only when their symbol leaves the watchlist.
type Cache struct {
	mu          sync.RWMutex
	signals     *SignalSet
	failures    map[core.Symbol]*core.FetchError
	committedAt time.Time
	lastBatch   int
	allFailed   bool
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		signals:  NewSignalSet(),
		failures: make(map[core.Symbol]*core.FetchError),
	}
}

// Commit builds the next set in watchlist order from the batch successes,
// falling back to the prior record for any symbol that failed, and swaps
// it in atomically.
func (c *Cache) Commit(watchlist []core.Symbol, batch Batch, at time.Time) *SignalSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	failed := make(map[core.Symbol]*core.FetchError, len(batch.Failures))
	for _, f := range batch.Failures {
		failed[f.Symbol] = f
	}

	next := NewSignalSet()
	for _, sym := range watchlist {
		if r, ok := batch.Signals.Get(sym); ok {
			next.Put(r)
			continue
		}
		if prior, ok := c.signals.Get(sym); ok {
			next.Put(prior)
		}
	}

	c.signals = next
	c.failures = failed
	c.committedAt = at
	c.lastBatch = len(watchlist)
	c.allFailed = len(watchlist) > 0 && batch.Signals.Len() == 0
	return next.Clone()
}

// Put stores a single record, e.g. from a chart view refresh.
func (c *Cache) Put(r core.SignalRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.signals.Clone()
	next.Put(r)
	c.signals = next
	delete(c.failures, r.Symbol)
}

// Retain drops every record whose symbol is not in keep.
func (c *Cache) Retain(keep []core.Symbol) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := NewSignalSet()
	for _, r := range c.signals.Records() {
		if slices.Contains(keep, r.Symbol) {
			next.Put(r)
		}
	}
	c.signals = next
	for sym := range c.failures {
		if !slices.Contains(keep, sym) {
			delete(c.failures, sym)
		}
	}
}

// Get returns the committed record for symbol.
func (c *Cache) Get(symbol core.Symbol) (core.SignalRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.signals.Get(symbol)
}

// Snapshot is a read-only copy of the cache.
type Snapshot struct {
	Signals     *SignalSet
	Failures    []*core.FetchError
	CommittedAt time.Time
	Requested   int
	AllFailed   bool
}

// Snapshot returns a copy that is safe to read without locking.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	failures := make([]*core.FetchError, 0, len(c.failures))
	for _, f := range c.failures {
		failures = append(failures, f)
	}
	slices.SortFunc(failures, func(a, b *core.FetchError) int {
		switch {
		case a.Symbol < b.Symbol:
			return -1
		case a.Symbol > b.Symbol:
			return 1
		}
		return 0
	})

	return Snapshot{
		Signals:     c.signals.Clone(),
		Failures:    failures,
		CommittedAt: c.committedAt,
		Requested:   c.lastBatch,
		AllFailed:   c.allFailed,
	}
}

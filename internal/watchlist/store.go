// Package watchlist holds the persisted, ordered set of symbols the user
// tracks, plus the small UI preferences stored next to it.
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/storage/kv"
	"go.uber.org/zap"
)

// Key is the storage key of the persisted watchlist.
const Key = "watchlist"

// DefaultSymbols seeds the watchlist when nothing usable is persisted.
var DefaultSymbols = []core.Symbol{"AAPL", "GOOGL", "MSFT", "TSLA"}

// Store is the persisted watchlist. Every mutation is written to storage
// before the in-memory value is replaced.
type Store struct {
	storage  kv.Storage
	defaults []core.Symbol
	logger   *zap.Logger

	mu      sync.RWMutex
	symbols []core.Symbol
}

// NewStore creates a watchlist store over the given storage backend.
// A nil or empty defaults slice falls back to DefaultSymbols.
func NewStore(storage kv.Storage, defaults []core.Symbol, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(defaults) == 0 {
		defaults = DefaultSymbols
	}
	return &Store{
		storage:  storage,
		defaults: dedupe(defaults),
		logger:   logger,
	}
}

// Load reads the persisted watchlist. Absent or unparsable state yields the
// default list; only a storage failure other than not-found is returned.
func (s *Store) Load(ctx context.Context) ([]core.Symbol, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.storage.Read(ctx, Key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.logger.Debug("no persisted watchlist, using defaults")
		s.symbols = slices.Clone(s.defaults)
	case err != nil:
		s.symbols = slices.Clone(s.defaults)
		return slices.Clone(s.symbols), fmt.Errorf("reading watchlist: %w", err)
	default:
		var raw []string
		if err := json.Unmarshal(data, &raw); err != nil {
			s.logger.Warn("persisted watchlist unparsable, using defaults", zap.Error(err))
			s.symbols = slices.Clone(s.defaults)
		} else if raw == nil {
			// a stored null counts as absent; only [] means empty
			s.logger.Debug("persisted watchlist is null, using defaults")
			s.symbols = slices.Clone(s.defaults)
		} else {
			s.symbols = normalizeAll(raw)
		}
	}

	return slices.Clone(s.symbols), nil
}

// Symbols returns a copy of the current watchlist.
func (s *Store) Symbols() []core.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.symbols)
}

// Contains reports whether the normalized symbol is on the watchlist.
func (s *Store) Contains(raw string) bool {
	sym := core.NormalizeSymbol(raw)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.symbols, sym)
}

// Add appends the symbol if absent and persists. Adding an existing symbol
// is a no-op and does not write.
func (s *Store) Add(ctx context.Context, raw string) ([]core.Symbol, error) {
	sym, err := core.ParseSymbol(raw)
	if err != nil {
		return s.Symbols(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.symbols, sym) {
		return slices.Clone(s.symbols), nil
	}

	next := append(slices.Clone(s.symbols), sym)
	if err := s.persist(ctx, next); err != nil {
		return slices.Clone(s.symbols), err
	}
	s.symbols = next

	s.logger.Info("symbol added to watchlist", zap.String("symbol", sym.String()))
	return slices.Clone(s.symbols), nil
}

// Remove deletes the symbol if present and persists. Removing an absent
// symbol still succeeds.
func (s *Store) Remove(ctx context.Context, raw string) ([]core.Symbol, error) {
	sym := core.NormalizeSymbol(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.symbols, sym)
	next := slices.Clone(s.symbols)
	if idx >= 0 {
		next = slices.Delete(next, idx, idx+1)
	}

	if err := s.persist(ctx, next); err != nil {
		return slices.Clone(s.symbols), err
	}
	s.symbols = next

	if idx >= 0 {
		s.logger.Info("symbol removed from watchlist", zap.String("symbol", sym.String()))
	}
	return slices.Clone(s.symbols), nil
}

// Toggle adds the symbol when absent and removes it when present.
func (s *Store) Toggle(ctx context.Context, raw string) ([]core.Symbol, error) {
	if s.Contains(raw) {
		return s.Remove(ctx, raw)
	}
	return s.Add(ctx, raw)
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context, symbols []core.Symbol) error {
	raw := make([]string, len(symbols))
	for i, sym := range symbols {
		raw[i] = sym.String()
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return core.WrapError(core.ErrPersistFailed, err)
	}
	if err := s.storage.Write(ctx, Key, data); err != nil {
		return core.WrapError(core.ErrPersistFailed, err)
	}
	return nil
}

func normalizeAll(raw []string) []core.Symbol {
	out := make([]core.Symbol, 0, len(raw))
	for _, r := range raw {
		if sym := core.NormalizeSymbol(r); sym != "" && !slices.Contains(out, sym) {
			out = append(out, sym)
		}
	}
	return out
}

func dedupe(symbols []core.Symbol) []core.Symbol {
	raw := make([]string, len(symbols))
	for i, s := range symbols {
		raw[i] = string(s)
	}
	return normalizeAll(raw)
}

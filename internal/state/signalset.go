// Package state holds the in-memory signal cache the dashboard renders from.
package state

import (
	"slices"

	"github.com/newthinker/signaldeck/internal/core"
)

// SignalSet maps symbols to their latest record, keeping insertion order.
type SignalSet struct {
	order   []core.Symbol
	records map[core.Symbol]core.SignalRecord
}

// NewSignalSet creates an empty set
func NewSignalSet() *SignalSet {
	return &SignalSet{records: make(map[core.Symbol]core.SignalRecord)}
}

// Put inserts or replaces the record for its symbol.
func (s *SignalSet) Put(r core.SignalRecord) {
	if _, ok := s.records[r.Symbol]; !ok {
		s.order = append(s.order, r.Symbol)
	}
	s.records[r.Symbol] = r
}

// Get returns the record for symbol.
func (s *SignalSet) Get(symbol core.Symbol) (core.SignalRecord, bool) {
	if s == nil {
		return core.SignalRecord{}, false
	}
	r, ok := s.records[symbol]
	return r, ok
}

// Len returns the number of records.
func (s *SignalSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Symbols returns the keys in insertion order.
func (s *SignalSet) Symbols() []core.Symbol {
	if s == nil {
		return nil
	}
	return slices.Clone(s.order)
}

// Records returns the records in insertion order.
func (s *SignalSet) Records() []core.SignalRecord {
	if s == nil {
		return nil
	}
	out := make([]core.SignalRecord, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, s.records[sym])
	}
	return out
}

// Clone returns an independent copy of the set.
func (s *SignalSet) Clone() *SignalSet {
	c := NewSignalSet()
	for _, r := range s.Records() {
		c.Put(r)
	}
	return c
}

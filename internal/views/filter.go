package views

import (
	"strings"

	"github.com/newthinker/signaldeck/internal/core"
)

// Filter narrows a signal list. Zero values match everything.
type Filter struct {
	Direction  core.Direction
	Query      string
	StrongOnly bool
}

// IsZero reports whether f matches every record.
func (f Filter) IsZero() bool {
	return f.Direction == "" && strings.TrimSpace(f.Query) == "" && !f.StrongOnly
}

// Apply returns the records matching f in input order.
func (f Filter) Apply(records []core.SignalRecord) []core.SignalRecord {
	query := strings.ToUpper(strings.TrimSpace(f.Query))
	dir := core.Direction(strings.ToUpper(string(f.Direction)))

	out := make([]core.SignalRecord, 0, len(records))
	for _, r := range records {
		if dir != "" && r.Direction != dir {
			continue
		}
		if f.StrongOnly && !r.IsStrongSignal {
			continue
		}
		if query != "" && !strings.Contains(string(r.Symbol), query) {
			continue
		}
		out = append(out, r)
	}
	return out
}

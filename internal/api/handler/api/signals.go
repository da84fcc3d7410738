package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/signaldeck/internal/api/response"
	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/state"
	"github.com/newthinker/signaldeck/internal/views"
)

// SignalsSource exposes the committed signal state.
type SignalsSource interface {
	Signals(key views.SortKey, f views.Filter) []core.SignalRecord
	Snapshot() state.Snapshot
}

// SignalsHandler handles signal-related API requests.
type SignalsHandler struct {
	src SignalsSource
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(src SignalsSource) *SignalsHandler {
	return &SignalsHandler{src: src}
}

// FailureView is a per-symbol fetch failure on the wire.
type FailureView struct {
	Symbol core.Symbol `json:"symbol"`
	Kind   string      `json:"kind"`
	Error  string      `json:"error"`
}

// List returns the committed signals filtered and sorted by query
// parameters: sort, direction, q and strong.
func (h *SignalsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := views.ParseSortKey(q.Get("sort"))
	filter := ParseFilter(r)

	signals := h.src.Signals(key, filter)
	snap := h.src.Snapshot()

	var committedAt *time.Time
	if !snap.CommittedAt.IsZero() {
		t := snap.CommittedAt.UTC()
		committedAt = &t
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"signals":      signals,
		"count":        len(signals),
		"failures":     failureViews(snap.Failures),
		"all_failed":   snap.AllFailed,
		"committed_at": committedAt,
		"sort":         key,
	})
}

// ParseFilter reads direction, q and strong from the query string.
// Unrecognized directions are ignored.
func ParseFilter(r *http.Request) views.Filter {
	q := r.URL.Query()
	f := views.Filter{Query: q.Get("q")}

	if d := core.Direction(strings.ToUpper(q.Get("direction"))); d.Valid() {
		f.Direction = d
	}
	if strong, err := strconv.ParseBool(q.Get("strong")); err == nil {
		f.StrongOnly = strong
	}
	return f
}

func failureViews(failures []*core.FetchError) []FailureView {
	out := make([]FailureView, 0, len(failures))
	for _, f := range failures {
		out = append(out, FailureView{
			Symbol: f.Symbol,
			Kind:   f.Kind(),
			Error:  f.Error(),
		})
	}
	return out
}

package web

import (
	"net/http"
	"time"

	"github.com/newthinker/signaldeck/internal/api/handler/api"
	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/dashboard"
	"github.com/newthinker/signaldeck/internal/views"
)

// HomeData holds data for the home template
type HomeData struct {
	Signals     []core.SignalRecord
	Summary     views.Summary
	Failed      []core.Symbol
	AllFailed   bool
	CommittedAt time.Time
	Sort        views.SortKey
	Filter      views.Filter
}

// Home renders the watchlist signal table.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	route := dashboard.Home()
	if !h.navigate(w, route) {
		return
	}

	key := views.ParseSortKey(r.URL.Query().Get("sort"))
	filter := api.ParseFilter(r)
	signals := h.dash.Signals(key, filter)
	snap := h.dash.Snapshot()

	failed := make([]core.Symbol, 0, len(snap.Failures))
	for _, f := range snap.Failures {
		failed = append(failed, f.Symbol)
	}

	data := HomeData{
		Signals:     signals,
		Summary:     views.Aggregate(signals),
		Failed:      failed,
		AllFailed:   snap.AllFailed,
		CommittedAt: snap.CommittedAt,
		Sort:        key,
		Filter:      filter,
	}
	h.render(w, "home.html", h.page(r, "Signals", route, data))
}

// Portfolio renders the aggregated portfolio view.
func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	route := dashboard.Portfolio()
	if !h.navigate(w, route) {
		return
	}

	view := h.dash.Portfolio(api.PortfolioOptions(r, h.dash.PortfolioOptions()))
	h.render(w, "portfolio.html", h.page(r, "Portfolio", route, view))
}

// ChartData holds data for the chart template
type ChartData struct {
	View    views.ChartView
	Loading bool
	Watched bool
}

// Chart renders the single-symbol chart with SMA and RSI overlays.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	sym, err := core.ParseSymbol(r.PathValue("symbol"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	route := dashboard.Chart(sym)
	if !h.navigate(w, route) {
		return
	}

	view, loading := h.dash.ChartView()
	watched := false
	for _, s := range h.dash.Watchlist() {
		if s == sym {
			watched = true
			break
		}
	}

	p := h.page(r, sym.String(), route, ChartData{View: view, Loading: loading, Watched: watched})
	if loading {
		p.AutoRefresh = pollSeconds
	}
	h.render(w, "chart.html", p)
}

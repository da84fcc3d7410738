package api

import (
	"net/http"

	"github.com/newthinker/signaldeck/internal/api/response"
	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/dashboard"
	"github.com/newthinker/signaldeck/internal/views"
)

// ChartNavigator activates the chart view and reads it back.
type ChartNavigator interface {
	Navigate(route dashboard.Route) error
	ChartView() (views.ChartView, bool)
}

// ChartHandler serves the single-symbol chart view.
type ChartHandler struct {
	nav ChartNavigator
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(nav ChartNavigator) *ChartHandler {
	return &ChartHandler{nav: nav}
}

// Get makes the symbol's chart the active view and returns its current
// state. Loading is true until the first fetch for the symbol completes.
func (h *ChartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sym, err := core.ParseSymbol(r.PathValue("symbol"))
	if err != nil {
		response.Fail(w, err)
		return
	}

	if err := h.nav.Navigate(dashboard.Chart(sym)); err != nil {
		response.Fail(w, err)
		return
	}

	view, loading := h.nav.ChartView()
	response.JSON(w, http.StatusOK, map[string]any{
		"chart":   view,
		"loading": loading,
	})
}

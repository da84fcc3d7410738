package api

import (
	"net/http"
	"strconv"

	"github.com/newthinker/signaldeck/internal/api/response"
	"github.com/newthinker/signaldeck/internal/views"
)

// PortfolioSource builds the portfolio view.
type PortfolioSource interface {
	Portfolio(opts views.PortfolioOptions) views.PortfolioView
	PortfolioOptions() views.PortfolioOptions
}

// PortfolioHandler serves the aggregated portfolio view.
type PortfolioHandler struct {
	src PortfolioSource
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(src PortfolioSource) *PortfolioHandler {
	return &PortfolioHandler{src: src}
}

// Get returns the portfolio. Query parameters sort, direction, q, strong,
// movers and threshold override the configured options.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.src.Portfolio(PortfolioOptions(r, h.src.PortfolioOptions())))
}

// PortfolioOptions overlays query parameters onto base.
func PortfolioOptions(r *http.Request, base views.PortfolioOptions) views.PortfolioOptions {
	q := r.URL.Query()
	opts := base

	if key := views.ParseSortKey(q.Get("sort")); key != "" {
		opts.Sort = key
	}
	opts.Filter = ParseFilter(r)

	if n, err := strconv.Atoi(q.Get("movers")); err == nil && n > 0 {
		opts.TopMoversLimit = n
	}
	if v, err := strconv.ParseFloat(q.Get("threshold"), 64); err == nil && v >= 0 {
		opts.SuggestionThreshold = v
	}
	return opts
}

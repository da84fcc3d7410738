// Package web renders the HTML dashboard. Every page is a layout plus one
// page template; pages poll with a meta refresh while data is loading.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/dashboard"
	"github.com/newthinker/signaldeck/internal/scheduler"
	"github.com/newthinker/signaldeck/internal/state"
	"github.com/newthinker/signaldeck/internal/views"
	"go.uber.org/zap"
)

//go:embed templates/*
var templateFS embed.FS

// pollSeconds is the meta refresh interval while a fetch is in flight.
const pollSeconds = 2

var pages = []string{"home.html", "chart.html", "portfolio.html"}

// Dashboard is the navigation state the pages render.
type Dashboard interface {
	Navigate(route dashboard.Route) error
	Refresh() bool
	RefreshState() (scheduler.RefreshState, bool)
	Watchlist() []core.Symbol
	Signals(key views.SortKey, f views.Filter) []core.SignalRecord
	Snapshot() state.Snapshot
	Portfolio(opts views.PortfolioOptions) views.PortfolioView
	PortfolioOptions() views.PortfolioOptions
	ChartView() (views.ChartView, bool)
	AddSymbol(ctx context.Context, raw string) ([]core.Symbol, error)
	RemoveSymbol(ctx context.Context, raw string) ([]core.Symbol, error)
	ToggleSymbol(ctx context.Context, raw string) ([]core.Symbol, error)
}

// Preferences provides the persisted UI flags.
type Preferences interface {
	DarkMode(ctx context.Context) (bool, error)
	ToggleDarkMode(ctx context.Context) (bool, error)
}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// each instance holds layout.html plus one page template
	pageTemplates map[string]*template.Template
	dash          Dashboard
	prefs         Preferences
	logger        *zap.Logger
}

// Page is the data every page template receives.
type Page struct {
	Title       string
	Route       string
	DarkMode    bool
	AutoRefresh int
	Refresh     scheduler.RefreshState
	Watchlist   []core.Symbol
	Flash       string
	Content     any
}

// NewHandler creates a new web handler with templates loaded from the given
// directory. If templatesDir is empty, it falls back to embedded templates.
func NewHandler(templatesDir string, dash Dashboard, prefs Preferences, logger *zap.Logger) (*Handler, error) {
	var fsys fs.FS
	if templatesDir != "" {
		fsys = os.DirFS(filepath.Clean(templatesDir))
	} else {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("accessing embedded templates: %w", err)
		}
		fsys = sub
	}
	return NewHandlerWithFS(fsys, dash, prefs, logger)
}

// NewHandlerWithFS creates a new web handler using a custom filesystem.
func NewHandlerWithFS(fsys fs.FS, dash Dashboard, prefs Preferences, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pageTemplates := make(map[string]*template.Template)
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	return &Handler{
		pageTemplates: pageTemplates,
		dash:          dash,
		prefs:         prefs,
		logger:        logger,
	}, nil
}

var funcs = template.FuncMap{
	"price":      views.FormatPrice,
	"percent":    views.FormatPercent,
	"confidence": views.FormatConfidence,
	"isBuy":      func(d core.Direction) bool { return d == core.DirectionBuy },
	"tail":       tail,
	"num":        func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
}

// tail returns the last n chart points, newest first.
func tail(points []views.ChartPoint, n int) []views.ChartPoint {
	if n < len(points) {
		points = points[len(points)-n:]
	}
	out := make([]views.ChartPoint, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// page fills the shared layout fields from the dashboard.
func (h *Handler) page(r *http.Request, title string, route dashboard.Route, content any) Page {
	p := Page{
		Title:     title,
		Route:     route.String(),
		Watchlist: h.dash.Watchlist(),
		Flash:     r.URL.Query().Get("flash"),
		Content:   content,
	}

	if h.prefs != nil {
		dark, err := h.prefs.DarkMode(r.Context())
		if err != nil {
			h.logger.Warn("reading dark mode", zap.Error(err))
		}
		p.DarkMode = dark
	}

	if st, ok := h.dash.RefreshState(); ok {
		p.Refresh = st
		p.AutoRefresh = autoRefresh(st)
	}
	return p
}

// autoRefresh polls quickly while fetching and otherwise reloads when the
// countdown expires.
func autoRefresh(st scheduler.RefreshState) int {
	if st.InFlight {
		return pollSeconds
	}
	return max(st.CountdownSeconds, 1)
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, page string, data Page) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		h.logger.Error("rendering page", zap.String("page", page), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// navigate activates route, answering with an error page on failure.
func (h *Handler) navigate(w http.ResponseWriter, route dashboard.Route) bool {
	if err := h.dash.Navigate(route); err != nil {
		h.logger.Warn("navigation failed", zap.String("route", route.String()), zap.Error(err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return false
	}
	return true
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return templateFS
	}
	return sub
}

package dashboard

import (
	"fmt"
	"strings"

	"github.com/newthinker/signaldeck/internal/core"
)

// ErrUnknownRoute is returned for paths that map to no view.
var ErrUnknownRoute = &core.Error{Code: "UNKNOWN_ROUTE", Message: "unknown route"}

// RouteKind names a dashboard view
type RouteKind string

const (
	RouteHome      RouteKind = "home"
	RouteChart     RouteKind = "chart"
	RoutePortfolio RouteKind = "portfolio"
)

// Route is the active view plus its parameter.
type Route struct {
	Kind   RouteKind
	Symbol core.Symbol
}

// Home, Portfolio and Chart build routes.
func Home() Route                    { return Route{Kind: RouteHome} }
func Portfolio() Route               { return Route{Kind: RoutePortfolio} }
func Chart(symbol core.Symbol) Route { return Route{Kind: RouteChart, Symbol: symbol} }

// IsBatch reports whether the route shows the whole watchlist.
func (r Route) IsBatch() bool {
	return r.Kind == RouteHome || r.Kind == RoutePortfolio
}

func (r Route) String() string {
	if r.Kind == RouteChart {
		return fmt.Sprintf("chart/%s", r.Symbol)
	}
	return string(r.Kind)
}

// ParseRoute maps "", "/", "home", "portfolio" and "chart/{symbol}" (with or
// without a leading slash) to a Route.
func ParseRoute(path string) (Route, error) {
	p := strings.Trim(strings.TrimSpace(path), "/")

	switch strings.ToLower(p) {
	case "", string(RouteHome):
		return Home(), nil
	case string(RoutePortfolio):
		return Portfolio(), nil
	}

	head, rest, ok := strings.Cut(p, "/")
	if ok && strings.EqualFold(head, string(RouteChart)) {
		sym, err := core.ParseSymbol(rest)
		if err != nil || strings.Contains(rest, "/") {
			return Route{}, core.WrapError(core.ErrInvalidSymbol, fmt.Errorf("route %q", path))
		}
		return Chart(sym), nil
	}

	return Route{}, core.WrapError(ErrUnknownRoute, fmt.Errorf("%q", path))
}

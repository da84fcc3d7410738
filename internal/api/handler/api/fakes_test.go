package api

import (
	"context"
	"errors"
	"slices"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/dashboard"
	"github.com/newthinker/signaldeck/internal/predictor"
	"github.com/newthinker/signaldeck/internal/scheduler"
	"github.com/newthinker/signaldeck/internal/state"
	"github.com/newthinker/signaldeck/internal/views"
)

type fakeWatchlist struct {
	symbols []core.Symbol
	err     error
}

func (f *fakeWatchlist) Watchlist() []core.Symbol { return slices.Clone(f.symbols) }

func (f *fakeWatchlist) AddSymbol(ctx context.Context, raw string) ([]core.Symbol, error) {
	if f.err != nil {
		return f.Watchlist(), f.err
	}
	sym, err := core.ParseSymbol(raw)
	if err != nil {
		return f.Watchlist(), err
	}
	if !slices.Contains(f.symbols, sym) {
		f.symbols = append(f.symbols, sym)
	}
	return f.Watchlist(), nil
}

func (f *fakeWatchlist) RemoveSymbol(ctx context.Context, raw string) ([]core.Symbol, error) {
	if f.err != nil {
		return f.Watchlist(), f.err
	}
	sym := core.NormalizeSymbol(raw)
	f.symbols = slices.DeleteFunc(f.symbols, func(s core.Symbol) bool { return s == sym })
	return f.Watchlist(), nil
}

func (f *fakeWatchlist) ToggleSymbol(ctx context.Context, raw string) ([]core.Symbol, error) {
	if slices.Contains(f.symbols, core.NormalizeSymbol(raw)) {
		return f.RemoveSymbol(ctx, raw)
	}
	return f.AddSymbol(ctx, raw)
}

type fakeSignals struct {
	records []core.SignalRecord
	snap    state.Snapshot
}

func (f *fakeSignals) Signals(key views.SortKey, filter views.Filter) []core.SignalRecord {
	return views.SortBy(filter.Apply(f.records), key)
}

func (f *fakeSignals) Snapshot() state.Snapshot { return f.snap }

func (f *fakeSignals) Portfolio(opts views.PortfolioOptions) views.PortfolioView {
	return views.Portfolio(f.records, f.snap.Requested, f.snap.Failures, opts)
}

func (f *fakeSignals) PortfolioOptions() views.PortfolioOptions {
	return views.DefaultPortfolioOptions()
}

type fakeNavigator struct {
	routes  []dashboard.Route
	view    views.ChartView
	loading bool
	err     error
}

func (f *fakeNavigator) Navigate(route dashboard.Route) error {
	if f.err != nil {
		return f.err
	}
	f.routes = append(f.routes, route)
	return nil
}

func (f *fakeNavigator) ChartView() (views.ChartView, bool) { return f.view, f.loading }

type fakeRefresh struct {
	active    bool
	state     scheduler.RefreshState
	triggered int
}

func (f *fakeRefresh) Refresh() bool {
	if !f.active {
		return false
	}
	f.triggered++
	return true
}

func (f *fakeRefresh) RefreshState() (scheduler.RefreshState, bool) { return f.state, f.active }

type fakePrefs struct {
	dark bool
	err  error
}

func (f *fakePrefs) DarkMode(ctx context.Context) (bool, error) { return f.dark, f.err }

func (f *fakePrefs) SetDarkMode(ctx context.Context, on bool) error {
	if f.err != nil {
		return f.err
	}
	f.dark = on
	return nil
}

func (f *fakePrefs) ToggleDarkMode(ctx context.Context) (bool, error) {
	if f.err != nil {
		return f.dark, f.err
	}
	f.dark = !f.dark
	return f.dark, nil
}

type fakeHealth struct {
	health *predictor.Health
	err    error
}

func (f *fakeHealth) Health(ctx context.Context) (*predictor.Health, error) { return f.health, f.err }

var errDiskFull = core.WrapError(core.ErrPersistFailed, errors.New("disk full"))

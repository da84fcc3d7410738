// Package dashboard owns the active view and wires the watchlist, signal
// cache and refresh scheduler together for it.
package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/loader"
	"github.com/newthinker/signaldeck/internal/predictor"
	"github.com/newthinker/signaldeck/internal/router"
	"github.com/newthinker/signaldeck/internal/scheduler"
	"github.com/newthinker/signaldeck/internal/state"
	"github.com/newthinker/signaldeck/internal/views"
	"github.com/newthinker/signaldeck/internal/watchlist"
	"go.uber.org/zap"
)

// ErrClosed is returned when navigating a closed dashboard.
var ErrClosed = &core.Error{Code: "DASHBOARD_CLOSED", Message: "dashboard closed"}

// Gauges receives size updates for metrics.
type Gauges interface {
	SetWatchlistSize(size int)
	SetSignalSetSize(size int)
}

// Deps are the collaborators of a Dashboard. Router and Gauges are optional.
type Deps struct {
	Fetcher   predictor.Fetcher
	Loader    *loader.Loader
	Watchlist *watchlist.Store
	Cache     *state.Cache
	Router    *router.Router
	Gauges    Gauges
}

// Options tunes refresh timing and derived views.
type Options struct {
	Refresh scheduler.Config
	Views   views.PortfolioOptions
}

// Dashboard is the navigation state of one process: exactly one view is
// active at a time and owns the only running scheduler.
type Dashboard struct {
	deps   Deps
	opts   Options
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	alerts sync.WaitGroup

	// mu serializes navigation and watchlist retargeting. Scheduler Apply
	// callbacks never take it, so Stop can be called while holding it.
	mu     sync.Mutex
	route  Route
	handle *scheduler.Handle
	closed bool

	chartMu sync.RWMutex
	chart   chartState
}

type chartState struct {
	symbol    core.Symbol
	record    *core.SignalRecord
	err       error
	fetchedAt time.Time
}

type batchResult struct {
	symbols []core.Symbol
	batch   loader.Result
}

type chartResult struct {
	symbol core.Symbol
	record *core.SignalRecord
	err    error
}

// New creates a dashboard with no active view.
func New(deps Deps, opts Options, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Loader == nil {
		deps.Loader = loader.New(deps.Fetcher, logger)
	}
	if deps.Cache == nil {
		deps.Cache = state.NewCache()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dashboard{
		deps:   deps,
		opts:   opts,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Route returns the active route.
func (d *Dashboard) Route() Route {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.route
}

// Navigate tears down the active view and starts the one for route.
// Navigating to the already active route is a no-op.
func (d *Dashboard) Navigate(route Route) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	switch route.Kind {
	case RouteHome, RoutePortfolio, RouteChart:
	default:
		return core.WrapError(ErrUnknownRoute, fmt.Errorf("%q", route.Kind))
	}
	if d.handle != nil && d.route == route {
		return nil
	}

	d.stopActive()
	d.route = route
	if route.Kind == RouteChart {
		d.handle = d.startChart(route.Symbol)
	} else {
		d.handle = d.startBatch(route)
	}

	d.logger.Info("view activated", zap.String("route", route.String()))
	return nil
}

func (d *Dashboard) stopActive() {
	if d.handle == nil {
		return
	}
	d.handle.Stop()
	d.handle = nil
	d.logger.Debug("view deactivated", zap.String("route", d.route.String()))
}

func (d *Dashboard) startBatch(route Route) *scheduler.Handle {
	job := scheduler.Job[batchResult]{
		Name: string(route.Kind),
		Fetch: func(ctx context.Context, symbols []core.Symbol) batchResult {
			return batchResult{symbols: symbols, batch: d.deps.Loader.LoadAll(ctx, symbols)}
		},
		Apply: d.applyBatch,
	}
	return scheduler.Start(d.ctx, d.opts.Refresh, job, d.deps.Watchlist.Symbols(), d.logger)
}

func (d *Dashboard) applyBatch(r batchResult) {
	committed := d.deps.Cache.Commit(r.symbols, r.batch, time.Now())
	if d.deps.Gauges != nil {
		d.deps.Gauges.SetSignalSetSize(committed.Len())
	}

	if r.batch.AllFailed() {
		d.logger.Warn("no symbol returned data", zap.Int("symbols", len(r.symbols)))
	}

	d.routeAlerts(r.batch.Signals.Records())
}

// routeAlerts forwards fresh strong signals without blocking the scheduler.
func (d *Dashboard) routeAlerts(records []core.SignalRecord) {
	if d.deps.Router == nil {
		return
	}
	var strong []core.SignalRecord
	for _, r := range records {
		if r.IsStrongSignal {
			strong = append(strong, r)
		}
	}
	if len(strong) == 0 {
		return
	}

	d.alerts.Add(1)
	go func() {
		defer d.alerts.Done()
		d.deps.Router.RouteBatch(d.ctx, strong)
	}()
}

func (d *Dashboard) startChart(symbol core.Symbol) *scheduler.Handle {
	prior := d.priorRecord(symbol)
	d.chartMu.Lock()
	d.chart = chartState{symbol: symbol, record: prior}
	d.chartMu.Unlock()

	job := scheduler.Job[chartResult]{
		Name: string(RouteChart),
		Fetch: func(ctx context.Context, symbols []core.Symbol) chartResult {
			res := chartResult{symbol: symbol}
			res.record, res.err = d.deps.Fetcher.Fetch(ctx, symbol)
			return res
		},
		Apply: d.applyChart,
	}
	return scheduler.Start(d.ctx, d.opts.Refresh, job, []core.Symbol{symbol}, d.logger)
}

// priorRecord finds the last good record for symbol from the chart state
// or the batch cache.
func (d *Dashboard) priorRecord(symbol core.Symbol) *core.SignalRecord {
	d.chartMu.RLock()
	if d.chart.symbol == symbol && d.chart.record != nil {
		r := *d.chart.record
		d.chartMu.RUnlock()
		return &r
	}
	d.chartMu.RUnlock()

	if r, ok := d.deps.Cache.Get(symbol); ok {
		return &r
	}
	return nil
}

func (d *Dashboard) applyChart(r chartResult) {
	d.chartMu.Lock()
	if d.chart.symbol != r.symbol {
		d.chartMu.Unlock()
		return
	}
	d.chart.fetchedAt = time.Now()
	if r.err != nil {
		d.chart.err = r.err
		d.chartMu.Unlock()
		d.logger.Warn("chart fetch failed",
			zap.String("symbol", r.symbol.String()),
			zap.Error(r.err),
		)
		return
	}
	d.chart.record = r.record
	d.chart.err = nil
	d.chartMu.Unlock()

	// keep the batch cache warm for watched symbols only
	if d.deps.Watchlist.Contains(r.symbol.String()) {
		d.deps.Cache.Put(*r.record)
	}
	d.routeAlerts([]core.SignalRecord{*r.record})
}

// Refresh triggers an immediate refetch of the active view.
func (d *Dashboard) Refresh() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == nil {
		return false
	}
	d.handle.Refresh()
	return true
}

// RefreshState reports the active scheduler's state.
func (d *Dashboard) RefreshState() (scheduler.RefreshState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == nil {
		return scheduler.RefreshState{}, false
	}
	return d.handle.State(), true
}

// Watchlist returns the current symbols.
func (d *Dashboard) Watchlist() []core.Symbol {
	return d.deps.Watchlist.Symbols()
}

// AddSymbol persists the symbol and retargets the active batch view.
func (d *Dashboard) AddSymbol(ctx context.Context, raw string) ([]core.Symbol, error) {
	return d.mutate(ctx, raw, d.deps.Watchlist.Add)
}

// RemoveSymbol persists the removal, drops the symbol from the cache and
// retargets the active batch view.
func (d *Dashboard) RemoveSymbol(ctx context.Context, raw string) ([]core.Symbol, error) {
	return d.mutate(ctx, raw, d.deps.Watchlist.Remove)
}

// ToggleSymbol adds or removes the symbol.
func (d *Dashboard) ToggleSymbol(ctx context.Context, raw string) ([]core.Symbol, error) {
	return d.mutate(ctx, raw, d.deps.Watchlist.Toggle)
}

func (d *Dashboard) mutate(ctx context.Context, raw string, op func(context.Context, string) ([]core.Symbol, error)) ([]core.Symbol, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	before := d.deps.Watchlist.Symbols()
	after, err := op(ctx, raw)
	if err != nil {
		return before, err
	}
	if slices.Equal(before, after) {
		return after, nil
	}

	d.deps.Cache.Retain(after)
	if d.deps.Gauges != nil {
		d.deps.Gauges.SetWatchlistSize(len(after))
	}
	if d.handle != nil && d.route.IsBatch() {
		d.handle.SetSymbols(after)
	}
	return after, nil
}

// Snapshot returns the committed signal state.
func (d *Dashboard) Snapshot() state.Snapshot {
	return d.deps.Cache.Snapshot()
}

// Signals returns the committed records filtered then sorted.
func (d *Dashboard) Signals(key views.SortKey, f views.Filter) []core.SignalRecord {
	records := d.deps.Cache.Snapshot().Signals.Records()
	return views.SortBy(f.Apply(records), key)
}

// Portfolio builds the portfolio view from the committed state.
func (d *Dashboard) Portfolio(opts views.PortfolioOptions) views.PortfolioView {
	snap := d.deps.Cache.Snapshot()
	return views.Portfolio(snap.Signals.Records(), snap.Requested, snap.Failures, opts)
}

// PortfolioOptions returns the configured view options.
func (d *Dashboard) PortfolioOptions() views.PortfolioOptions {
	return d.opts.Views
}

// ChartView returns the chart for the active chart route. Loading is true
// until the first fetch for the symbol completes.
func (d *Dashboard) ChartView() (view views.ChartView, loading bool) {
	d.chartMu.RLock()
	defer d.chartMu.RUnlock()
	view = views.Chart(d.chart.symbol, d.chart.record, d.chart.err)
	return view, d.chart.fetchedAt.IsZero()
}

// Close stops the active view and waits for pending alerts.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.stopActive()
	}
	d.mu.Unlock()

	d.cancel()
	d.alerts.Wait()
}

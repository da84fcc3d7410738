// Package scheduler drives periodic background refreshes for one view.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
	"go.uber.org/zap"
)

const (
	DefaultInterval = time.Hour
	DefaultTick     = time.Second
)

// Phase is the data timer state
type Phase string

const (
	PhaseIdle     Phase = "IDLE"
	PhaseFetching Phase = "FETCHING"
)

// Observer receives scheduler events for metrics.
type Observer interface {
	RecordRefreshCycle(view string)
	RecordStaleDiscard(view string)
}

// Config controls refresh timing.
type Config struct {
	Interval time.Duration
	Tick     time.Duration
	Observer Observer
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}
	return c
}

// Period is the number of countdown ticks per refresh interval.
func (c Config) Period() int {
	c = c.withDefaults()
	return int(c.Interval / c.Tick)
}

// Job is the work a scheduler repeats. Fetch runs off the scheduler
// goroutine with a context that is cancelled when its result is superseded.
// Apply always runs on the scheduler goroutine, and only for the result of
// the most recent trigger.
type Job[T any] struct {
	Name  string
	Fetch func(ctx context.Context, symbols []core.Symbol) T
	Apply func(result T)
}

// RefreshState is a point-in-time snapshot of a running scheduler.
type RefreshState struct {
	Phase            Phase         `json:"phase"`
	LastFetchedAt    time.Time     `json:"last_fetched_at"`
	CountdownSeconds int           `json:"countdown_seconds"`
	InFlight         bool          `json:"in_flight"`
	Symbols          []core.Symbol `json:"symbols"`
	Generation       uint64        `json:"generation"`
}

type commandKind int

const (
	cmdSetSymbols commandKind = iota
	cmdRefresh
)

type command struct {
	kind    commandKind
	symbols []core.Symbol
}

type result[T any] struct {
	gen      uint64
	value    T
	panicked bool
}

// Handle controls a running scheduler.
type Handle struct {
	cmds     chan command
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.RWMutex
	state RefreshState
}

// Start launches the scheduler loop and triggers the first fetch
// immediately. The loop exits when ctx is cancelled or Stop is called.
func Start[T any](ctx context.Context, cfg Config, job Job[T], symbols []core.Symbol, logger *zap.Logger) *Handle {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	h := &Handle{
		cmds: make(chan command),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	h.state = RefreshState{
		Phase:            PhaseIdle,
		CountdownSeconds: cfg.Period(),
		Symbols:          cloneSymbols(symbols),
	}

	l := &loop[T]{
		h:       h,
		cfg:     cfg,
		job:     job,
		symbols: cloneSymbols(symbols),
		logger:  logger.With(zap.String("view", job.Name)),
		results: make(chan result[T]),
	}
	go l.run(ctx)

	return h
}

// SetSymbols retargets the scheduler. Any in-flight fetch is cancelled and
// its result discarded, and a new fetch starts immediately.
func (h *Handle) SetSymbols(symbols []core.Symbol) {
	h.send(command{kind: cmdSetSymbols, symbols: cloneSymbols(symbols)})
}

// Refresh triggers an immediate fetch, superseding any in-flight one.
func (h *Handle) Refresh() {
	h.send(command{kind: cmdRefresh})
}

func (h *Handle) send(cmd command) {
	select {
	case h.cmds <- cmd:
	case <-h.done:
	}
}

// Stop halts both timers, cancels in-flight work and waits for the loop to
// exit. Safe to call more than once.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Done is closed when the scheduler loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// State returns a copy of the current refresh state.
func (h *Handle) State() RefreshState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := h.state
	s.Symbols = cloneSymbols(h.state.Symbols)
	return s
}

func (h *Handle) update(fn func(s *RefreshState)) {
	h.mu.Lock()
	fn(&h.state)
	h.mu.Unlock()
}

type loop[T any] struct {
	h       *Handle
	cfg     Config
	job     Job[T]
	symbols []core.Symbol
	logger  *zap.Logger
	results chan result[T]

	gen    uint64
	cancel context.CancelFunc
	timer  *time.Timer
}

func (l *loop[T]) run(ctx context.Context) {
	defer close(l.h.done)
	defer l.stopTimer()
	defer l.cancelFetch()

	countdown := NewCountdown(l.cfg.Period())
	ticker := time.NewTicker(l.cfg.Tick)
	defer ticker.Stop()

	l.logger.Debug("scheduler started",
		zap.Duration("interval", l.cfg.Interval),
		zap.Int("symbols", len(l.symbols)),
	)

	l.startFetch(ctx)

	for {
		var timerC <-chan time.Time
		if l.timer != nil {
			timerC = l.timer.C
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("scheduler context done")
			return
		case <-l.h.stop:
			l.logger.Debug("scheduler stopped")
			return
		case cmd := <-l.h.cmds:
			if cmd.kind == cmdSetSymbols {
				l.symbols = cmd.symbols
			}
			l.startFetch(ctx)
		case r := <-l.results:
			l.complete(r)
		case <-timerC:
			l.timer = nil
			l.startFetch(ctx)
		case <-ticker.C:
			v := countdown.Tick()
			l.h.update(func(s *RefreshState) { s.CountdownSeconds = v })
		}
	}
}

// startFetch supersedes any pending timer or in-flight fetch.
func (l *loop[T]) startFetch(ctx context.Context) {
	l.stopTimer()
	l.cancelFetch()

	l.gen++
	gen := l.gen
	fctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	symbols := cloneSymbols(l.symbols)

	l.h.update(func(s *RefreshState) {
		s.Phase = PhaseFetching
		s.InFlight = true
		s.Generation = gen
		s.Symbols = cloneSymbols(symbols)
	})

	go func() {
		r := result[T]{gen: gen}
		defer func() {
			if p := recover(); p != nil {
				l.logger.Error("fetch panicked",
					zap.Uint64("generation", gen),
					zap.String("panic", fmt.Sprint(p)),
				)
				r.panicked = true
			}
			select {
			case l.results <- r:
			case <-l.h.done:
			}
		}()
		r.value = l.job.Fetch(fctx, symbols)
	}()
}

func (l *loop[T]) complete(r result[T]) {
	if r.gen != l.gen {
		l.logger.Debug("discarding stale result",
			zap.Uint64("generation", r.gen),
			zap.Uint64("current", l.gen),
		)
		if l.cfg.Observer != nil {
			l.cfg.Observer.RecordStaleDiscard(l.job.Name)
		}
		return
	}

	l.cancelFetch()
	if !r.panicked && l.job.Apply != nil {
		l.job.Apply(r.value)
	}

	now := time.Now()
	l.h.update(func(s *RefreshState) {
		s.Phase = PhaseIdle
		s.InFlight = false
		if !r.panicked {
			s.LastFetchedAt = now
		}
	})
	if l.cfg.Observer != nil {
		l.cfg.Observer.RecordRefreshCycle(l.job.Name)
	}

	l.timer = time.NewTimer(l.cfg.Interval)
}

func (l *loop[T]) cancelFetch() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *loop[T]) stopTimer() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func cloneSymbols(symbols []core.Symbol) []core.Symbol {
	if symbols == nil {
		return nil
	}
	out := make([]core.Symbol, len(symbols))
	copy(out, symbols)
	return out
}

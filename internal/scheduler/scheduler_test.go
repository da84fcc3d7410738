package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

// recorder collects applied results in order.
type recorder struct {
	mu      sync.Mutex
	applied [][]core.Symbol
	ch      chan []core.Symbol
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan []core.Symbol, 16)}
}

func (r *recorder) apply(v []core.Symbol) {
	r.mu.Lock()
	r.applied = append(r.applied, v)
	r.mu.Unlock()
	select {
	case r.ch <- v:
	default:
	}
}

func (r *recorder) all() [][]core.Symbol {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]core.Symbol(nil), r.applied...)
}

func (r *recorder) next(t *testing.T) []core.Symbol {
	t.Helper()
	select {
	case v := <-r.ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for apply")
		return nil
	}
}

func echoJob(rec *recorder) Job[[]core.Symbol] {
	return Job[[]core.Symbol]{
		Name: "test",
		Fetch: func(ctx context.Context, symbols []core.Symbol) []core.Symbol {
			return symbols
		},
		Apply: rec.apply,
	}
}

type countingObserver struct {
	cycles atomic.Int32
	stale  atomic.Int32
}

func (o *countingObserver) RecordRefreshCycle(string) { o.cycles.Add(1) }
func (o *countingObserver) RecordStaleDiscard(string) { o.stale.Add(1) }

func TestStart_FetchesImmediately(t *testing.T) {
	rec := newRecorder()
	h := Start(context.Background(), Config{Interval: time.Hour}, echoJob(rec), []core.Symbol{"AAPL", "MSFT"}, nil)
	defer h.Stop()

	assert.Equal(t, []core.Symbol{"AAPL", "MSFT"}, rec.next(t))

	require.Eventually(t, func() bool {
		return h.State().Phase == PhaseIdle
	}, waitFor, 5*time.Millisecond)

	st := h.State()
	assert.False(t, st.InFlight)
	assert.False(t, st.LastFetchedAt.IsZero())
	assert.Equal(t, uint64(1), st.Generation)
}

func TestStart_RearmsAfterInterval(t *testing.T) {
	rec := newRecorder()
	obs := &countingObserver{}
	cfg := Config{Interval: 20 * time.Millisecond, Tick: 5 * time.Millisecond, Observer: obs}
	h := Start(context.Background(), cfg, echoJob(rec), []core.Symbol{"AAPL"}, nil)
	defer h.Stop()

	rec.next(t)
	rec.next(t)
	rec.next(t)

	assert.GreaterOrEqual(t, obs.cycles.Load(), int32(2))
}

func TestHandle_SetSymbolsDiscardsStale(t *testing.T) {
	rec := newRecorder()
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	var calls atomic.Int32
	obs := &countingObserver{}

	job := Job[[]core.Symbol]{
		Name: "test",
		Fetch: func(ctx context.Context, symbols []core.Symbol) []core.Symbol {
			started <- struct{}{}
			if calls.Add(1) == 1 {
				// ignore cancellation so the stale result still arrives
				<-release
			}
			return symbols
		},
		Apply: rec.apply,
	}

	h := Start(context.Background(), Config{Interval: time.Hour, Observer: obs}, job, []core.Symbol{"OLD"}, nil)
	defer h.Stop()

	<-started
	h.SetSymbols([]core.Symbol{"NEW"})
	assert.Equal(t, []core.Symbol{"NEW"}, rec.next(t))

	close(release)
	require.Eventually(t, func() bool { return obs.stale.Load() == 1 }, waitFor, 5*time.Millisecond)

	assert.Equal(t, [][]core.Symbol{{"NEW"}}, rec.all())
	assert.Equal(t, []core.Symbol{"NEW"}, h.State().Symbols)
	assert.Equal(t, uint64(2), h.State().Generation)
}

func TestHandle_SetSymbolsCancelsInFlight(t *testing.T) {
	rec := newRecorder()
	cancelled := make(chan struct{})
	var calls atomic.Int32

	job := Job[[]core.Symbol]{
		Name: "test",
		Fetch: func(ctx context.Context, symbols []core.Symbol) []core.Symbol {
			if calls.Add(1) == 1 {
				<-ctx.Done()
				close(cancelled)
			}
			return symbols
		},
		Apply: rec.apply,
	}

	h := Start(context.Background(), Config{Interval: time.Hour}, job, []core.Symbol{"OLD"}, nil)
	defer h.Stop()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, time.Millisecond)
	h.SetSymbols([]core.Symbol{"NEW"})

	select {
	case <-cancelled:
	case <-time.After(waitFor):
		t.Fatal("in-flight fetch was not cancelled")
	}
	assert.Equal(t, []core.Symbol{"NEW"}, rec.next(t))
}

func TestHandle_Refresh(t *testing.T) {
	rec := newRecorder()
	h := Start(context.Background(), Config{Interval: time.Hour}, echoJob(rec), []core.Symbol{"AAPL"}, nil)
	defer h.Stop()

	rec.next(t)
	h.Refresh()
	assert.Equal(t, []core.Symbol{"AAPL"}, rec.next(t))
}

func TestHandle_StopPreventsLateApply(t *testing.T) {
	rec := newRecorder()
	release := make(chan struct{})
	started := make(chan struct{})

	job := Job[[]core.Symbol]{
		Name: "test",
		Fetch: func(ctx context.Context, symbols []core.Symbol) []core.Symbol {
			close(started)
			<-release
			return symbols
		},
		Apply: rec.apply,
	}

	h := Start(context.Background(), Config{Interval: time.Hour}, job, []core.Symbol{"AAPL"}, nil)
	<-started

	h.Stop()
	close(release)
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, rec.all())
}

func TestHandle_StopIdempotent(t *testing.T) {
	h := Start(context.Background(), Config{Interval: time.Hour}, echoJob(newRecorder()), nil, nil)

	h.Stop()
	h.Stop()

	select {
	case <-h.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}

	// commands after stop must not block
	h.Refresh()
	h.SetSymbols([]core.Symbol{"AAPL"})
}

func TestHandle_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := Start(ctx, Config{Interval: time.Hour}, echoJob(newRecorder()), nil, nil)

	cancel()

	select {
	case <-h.Done():
	case <-time.After(waitFor):
		t.Fatal("scheduler did not exit on context cancel")
	}
}

func TestHandle_Countdown(t *testing.T) {
	cfg := Config{Interval: 30 * time.Millisecond, Tick: 10 * time.Millisecond}
	h := Start(context.Background(), cfg, echoJob(newRecorder()), nil, nil)
	defer h.Stop()

	assert.LessOrEqual(t, h.State().CountdownSeconds, 3)

	seen := map[int]bool{}
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		v := h.State().CountdownSeconds
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 3)
		seen[v] = true
		time.Sleep(2 * time.Millisecond)
	}
	assert.True(t, len(seen) > 1, "countdown should move")
}

func TestHandle_FetchPanicRecovered(t *testing.T) {
	rec := newRecorder()
	var calls atomic.Int32

	job := Job[[]core.Symbol]{
		Name: "test",
		Fetch: func(ctx context.Context, symbols []core.Symbol) []core.Symbol {
			if calls.Add(1) == 1 {
				panic("boom")
			}
			return symbols
		},
		Apply: rec.apply,
	}

	h := Start(context.Background(), Config{Interval: time.Hour}, job, []core.Symbol{"AAPL"}, nil)
	defer h.Stop()

	require.Eventually(t, func() bool {
		return calls.Load() == 1 && h.State().Phase == PhaseIdle
	}, waitFor, 5*time.Millisecond)
	assert.Empty(t, rec.all())
	assert.True(t, h.State().LastFetchedAt.IsZero())

	h.Refresh()
	assert.Equal(t, []core.Symbol{"AAPL"}, rec.next(t))
}

package router

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/notifier"
	"github.com/newthinker/signaldeck/internal/storage/kv"
)

type mockNotifier struct {
	mu          sync.Mutex
	name        string
	received    []core.SignalRecord
	batchCalled bool
}

func (m *mockNotifier) Name() string                   { return m.name }
func (m *mockNotifier) Init(cfg notifier.Config) error { return nil }
func (m *mockNotifier) Send(ctx context.Context, signal core.SignalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, signal)
	return nil
}
func (m *mockNotifier) SendBatch(ctx context.Context, signals []core.SignalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalled = true
	m.received = append(m.received, signals...)
	return nil
}

type countingObserver struct {
	routed      int
	byDirection map[string]int
}

func (o *countingObserver) RecordAlertRouted(direction string) {
	if o.byDirection == nil {
		o.byDirection = map[string]int{}
	}
	o.routed++
	o.byDirection[direction]++
}

func strong(sym string, dir core.Direction, confidence float64) core.SignalRecord {
	return core.SignalRecord{
		Symbol:         core.Symbol(sym),
		Direction:      dir,
		Confidence:     confidence,
		IsStrongSignal: true,
	}
}

func newTestRouter(cfg Config) (*Router, *mockNotifier) {
	registry := notifier.NewRegistry()
	mock := &mockNotifier{name: "mock"}
	registry.Register(mock)
	return New(cfg, registry, nil), mock
}

func TestRouter_Route_PassesFilters(t *testing.T) {
	r, mock := newTestRouter(Config{
		MinConfidence:    50,
		CooldownDuration: time.Minute,
		Directions:       []core.Direction{core.DirectionBuy, core.DirectionSell},
	})

	if !r.Route(context.Background(), strong("AAPL", core.DirectionBuy, 80)) {
		t.Fatal("expected signal to be routed")
	}

	if len(mock.received) != 1 {
		t.Errorf("expected 1 signal, got %d", len(mock.received))
	}
}

func TestRouter_Route_FilterByConfidence(t *testing.T) {
	r, mock := newTestRouter(Config{MinConfidence: 70, CooldownDuration: time.Minute})

	r.Route(context.Background(), strong("AAPL", core.DirectionBuy, 50))

	if len(mock.received) != 0 {
		t.Errorf("low confidence signal should be filtered, got %d", len(mock.received))
	}
}

func TestRouter_Route_StrongOnly(t *testing.T) {
	r, mock := newTestRouter(Config{MinConfidence: 0, StrongOnly: true, CooldownDuration: time.Minute})

	weak := strong("AAPL", core.DirectionBuy, 95)
	weak.IsStrongSignal = false
	r.Route(context.Background(), weak)

	if len(mock.received) != 0 {
		t.Errorf("weak signal should be filtered, got %d", len(mock.received))
	}
}

func TestRouter_Route_FilterByDirection(t *testing.T) {
	r, mock := newTestRouter(Config{
		CooldownDuration: time.Minute,
		Directions:       []core.Direction{core.DirectionBuy},
	})

	r.Route(context.Background(), strong("AAPL", core.DirectionSell, 95))

	if len(mock.received) != 0 {
		t.Errorf("SELL should be filtered, got %d", len(mock.received))
	}
}

func TestRouter_Route_Cooldown(t *testing.T) {
	r, mock := newTestRouter(Config{CooldownDuration: time.Hour})

	r.Route(context.Background(), strong("AAPL", core.DirectionBuy, 95))
	r.Route(context.Background(), strong("AAPL", core.DirectionBuy, 96))

	if len(mock.received) != 1 {
		t.Errorf("second signal should be in cooldown, got %d", len(mock.received))
	}

	// advance past the cooldown
	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	r.Route(context.Background(), strong("AAPL", core.DirectionBuy, 97))

	if len(mock.received) != 2 {
		t.Errorf("expected signal after cooldown, got %d", len(mock.received))
	}
}

func TestRouter_Route_DifferentSymbolsDifferentCooldown(t *testing.T) {
	r, mock := newTestRouter(Config{CooldownDuration: time.Hour})

	r.Route(context.Background(), strong("AAPL", core.DirectionBuy, 95))
	r.Route(context.Background(), strong("MSFT", core.DirectionBuy, 95))

	if len(mock.received) != 2 {
		t.Errorf("different symbols should not share cooldowns, got %d", len(mock.received))
	}
}

func TestRouter_ClearCooldown(t *testing.T) {
	r, mock := newTestRouter(Config{CooldownDuration: time.Hour})

	r.Route(context.Background(), strong("AAPL", core.DirectionBuy, 95))
	r.ClearCooldown("AAPL")
	r.Route(context.Background(), strong("AAPL", core.DirectionBuy, 95))

	if len(mock.received) != 2 {
		t.Errorf("expected 2 signals after clearing cooldown, got %d", len(mock.received))
	}

	r.ClearAllCooldowns()
	if r.GetStats()["cooldowns_active"] != 0 {
		t.Error("expected no active cooldowns")
	}
}

func TestRouter_RouteBatch(t *testing.T) {
	r, mock := newTestRouter(Config{MinConfidence: 90, CooldownDuration: time.Hour})
	obs := &countingObserver{}
	r.SetObserver(obs)

	routed := r.RouteBatch(context.Background(), []core.SignalRecord{
		strong("AAPL", core.DirectionBuy, 95),
		strong("MSFT", core.DirectionSell, 60),
		strong("TSLA", core.DirectionSell, 92),
	})

	if len(routed) != 2 {
		t.Fatalf("expected 2 routed, got %d", len(routed))
	}
	if !mock.batchCalled {
		t.Error("expected SendBatch to be used")
	}
	if obs.routed != 2 {
		t.Errorf("expected observer to count 2, got %d", obs.routed)
	}
	if obs.byDirection["BUY"] != 1 || obs.byDirection["SELL"] != 1 {
		t.Errorf("expected one BUY and one SELL, got %v", obs.byDirection)
	}

	// everything is now in cooldown
	if again := r.RouteBatch(context.Background(), routed); len(again) != 0 {
		t.Errorf("expected cooldown to filter batch, got %d", len(again))
	}
}

func TestRouter_NilRegistry(t *testing.T) {
	r := New(Config{CooldownDuration: time.Hour}, nil, nil)

	if !r.Route(context.Background(), strong("AAPL", core.DirectionBuy, 95)) {
		t.Error("nil registry should still route")
	}
	if got := r.RouteBatch(context.Background(), []core.SignalRecord{strong("MSFT", core.DirectionBuy, 95)}); len(got) != 1 {
		t.Errorf("expected 1 routed, got %d", len(got))
	}
}

func TestRouter_GetStats(t *testing.T) {
	r := New(DefaultConfig(), nil, nil)
	stats := r.GetStats()

	if stats["min_confidence"] != 90.0 {
		t.Errorf("unexpected min_confidence %v", stats["min_confidence"])
	}
	if stats["strong_only"] != true {
		t.Errorf("unexpected strong_only %v", stats["strong_only"])
	}
}

func TestRouter_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CooldownDuration != time.Hour {
		t.Errorf("default cooldown should be 1h, got %v", cfg.CooldownDuration)
	}
	if len(cfg.Directions) != 2 {
		t.Errorf("default should allow both directions, got %d", len(cfg.Directions))
	}
}

func TestRouter_PersistsAndRestoresCooldowns(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	r := New(Config{CooldownDuration: time.Hour}, nil, nil)
	r.SetHistory(store)
	r.Route(ctx, strong("AAPL", core.DirectionBuy, 95))

	keys, _ := store.List(ctx, "alerts/")
	if len(keys) != 1 || keys[0] != "alerts/AAPL" {
		t.Fatalf("expected persisted alert, got %v", keys)
	}

	restarted, mock := newTestRouter(Config{CooldownDuration: time.Hour})
	restarted.SetHistory(store)
	if err := restarted.LoadCooldowns(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restarted.Route(ctx, strong("AAPL", core.DirectionBuy, 95))
	if len(mock.received) != 0 {
		t.Error("restored cooldown should suppress the alert")
	}
}

func TestRouter_CleanupExpiredCooldowns(t *testing.T) {
	r := New(Config{CooldownDuration: 100 * time.Millisecond}, nil, nil)

	r.mu.Lock()
	r.cooldowns["AAPL"] = time.Now().Add(-300 * time.Millisecond) // expired
	r.cooldowns["MSFT"] = time.Now().Add(-300 * time.Millisecond) // expired
	r.cooldowns["GOOG"] = time.Now()                              // not expired
	r.mu.Unlock()

	removed := r.CleanupExpiredCooldowns()
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	r.mu.RLock()
	if len(r.cooldowns) != 1 {
		t.Errorf("expected 1 cooldown remaining, got %d", len(r.cooldowns))
	}
	r.mu.RUnlock()
}

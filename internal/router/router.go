// Package router forwards strong signals to notifiers with per-symbol cooldowns.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/notifier"
	"github.com/newthinker/signaldeck/internal/storage/kv"
	"go.uber.org/zap"
)

// historyPrefix is the storage key prefix of the last routed alert per symbol.
const historyPrefix = "alerts/"

// Config holds router configuration
type Config struct {
	MinConfidence    float64          `mapstructure:"min_confidence"` // 0-100
	CooldownDuration time.Duration    `mapstructure:"cooldown"`
	StrongOnly       bool             `mapstructure:"strong_only"`
	Directions       []core.Direction `mapstructure:"directions"`
}

// DefaultConfig returns default router configuration
func DefaultConfig() Config {
	return Config{
		MinConfidence:    90,
		CooldownDuration: 1 * time.Hour,
		StrongOnly:       true,
		Directions:       []core.Direction{core.DirectionBuy, core.DirectionSell},
	}
}

// Observer counts routed alerts by direction
type Observer interface {
	RecordAlertRouted(direction string)
}

// Router routes signals to notifiers with filtering
type Router struct {
	cfg       Config
	registry  *notifier.Registry
	logger    *zap.Logger
	cooldowns map[core.Symbol]time.Time // symbol -> last alert time
	history   kv.Storage
	observer  Observer
	now       func() time.Time
	mu        sync.RWMutex
}

// New creates a new signal router
func New(cfg Config, registry *notifier.Registry, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:       cfg,
		registry:  registry,
		logger:    logger,
		cooldowns: make(map[core.Symbol]time.Time),
		now:       time.Now,
	}
}

// SetHistory sets the storage used to persist the last alert per symbol
func (r *Router) SetHistory(store kv.Storage) {
	r.history = store
}

// SetObserver attaches a metrics observer
func (r *Router) SetObserver(o Observer) {
	r.observer = o
}

// LoadCooldowns restores cooldowns from the alert history so a restart
// does not re-send alerts that were routed recently.
func (r *Router) LoadCooldowns(ctx context.Context) error {
	if r.history == nil {
		return nil
	}

	keys, err := r.history.List(ctx, historyPrefix)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		data, err := r.history.Read(ctx, key)
		if err != nil {
			if errors.Is(err, kv.ErrNotFound) {
				continue
			}
			return err
		}
		var ev notifier.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			r.logger.Warn("skipping unreadable alert history", zap.String("key", key), zap.Error(err))
			continue
		}
		at, err := time.Parse(time.RFC3339, ev.RoutedAt)
		if err != nil {
			continue
		}
		sym := core.Symbol(strings.TrimPrefix(key, historyPrefix))
		if at.After(r.cooldowns[sym]) {
			r.cooldowns[sym] = at
		}
	}
	return nil
}

// Route processes a signal through filters and sends to notifiers.
// It reports whether the signal was forwarded.
func (r *Router) Route(ctx context.Context, signal core.SignalRecord) bool {
	if !r.passesFilters(signal) {
		r.logger.Debug("signal filtered out",
			zap.String("symbol", signal.Symbol.String()),
			zap.String("direction", string(signal.Direction)),
			zap.Float64("confidence", signal.Confidence),
		)
		return false
	}

	now := r.now()
	r.mu.Lock()
	r.cooldowns[signal.Symbol] = now
	r.mu.Unlock()

	r.persist(ctx, signal, now)
	if r.observer != nil {
		r.observer.RecordAlertRouted(string(signal.Direction))
	}

	// nil registry is allowed
	if r.registry == nil {
		return true
	}
	errs := r.registry.NotifyAll(ctx, signal)
	for name, err := range errs {
		r.logger.Error("notifier failed",
			zap.String("notifier", name),
			zap.Error(err),
		)
	}

	r.logger.Info("signal routed",
		zap.String("symbol", signal.Symbol.String()),
		zap.String("direction", string(signal.Direction)),
		zap.Float64("confidence", signal.Confidence),
		zap.Int("notifiers", r.registry.Len()),
		zap.Int("errors", len(errs)),
	)

	return true
}

// RouteBatch filters signals and sends the survivors as one batch.
// It returns the signals that were forwarded.
func (r *Router) RouteBatch(ctx context.Context, signals []core.SignalRecord) []core.SignalRecord {
	var filtered []core.SignalRecord
	now := r.now()

	for _, signal := range signals {
		if r.passesFilters(signal) {
			filtered = append(filtered, signal)

			r.mu.Lock()
			r.cooldowns[signal.Symbol] = now
			r.mu.Unlock()

			r.persist(ctx, signal, now)
			if r.observer != nil {
				r.observer.RecordAlertRouted(string(signal.Direction))
			}
		}
	}

	if len(filtered) == 0 || r.registry == nil {
		return filtered
	}

	errs := r.registry.NotifyAllBatch(ctx, filtered)
	for name, err := range errs {
		r.logger.Error("notifier failed on batch",
			zap.String("notifier", name),
			zap.Error(err),
		)
	}

	r.logger.Info("batch routed",
		zap.Int("total", len(signals)),
		zap.Int("filtered", len(filtered)),
		zap.Int("errors", len(errs)),
	)

	return filtered
}

func (r *Router) persist(ctx context.Context, signal core.SignalRecord, at time.Time) {
	if r.history == nil {
		return
	}
	data, err := json.Marshal(notifier.NewEvent(signal, at))
	if err != nil {
		r.logger.Error("failed to encode alert", zap.Error(err))
		return
	}
	if err := r.history.Write(ctx, historyPrefix+signal.Symbol.String(), data); err != nil {
		r.logger.Error("failed to persist alert",
			zap.String("symbol", signal.Symbol.String()),
			zap.Error(err),
		)
	}
}

// passesFilters checks if a signal passes all configured filters
func (r *Router) passesFilters(signal core.SignalRecord) bool {
	if signal.Confidence < r.cfg.MinConfidence {
		return false
	}

	if r.cfg.StrongOnly && !signal.IsStrongSignal {
		return false
	}

	if len(r.cfg.Directions) > 0 {
		allowed := false
		for _, d := range r.cfg.Directions {
			if signal.Direction == d {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	r.mu.RLock()
	last, exists := r.cooldowns[signal.Symbol]
	r.mu.RUnlock()

	if exists && r.now().Sub(last) < r.cfg.CooldownDuration {
		return false
	}

	return true
}

// ClearCooldown removes cooldown for a specific symbol
func (r *Router) ClearCooldown(symbol core.Symbol) {
	r.mu.Lock()
	delete(r.cooldowns, symbol)
	r.mu.Unlock()
}

// ClearAllCooldowns removes all cooldowns
func (r *Router) ClearAllCooldowns() {
	r.mu.Lock()
	r.cooldowns = make(map[core.Symbol]time.Time)
	r.mu.Unlock()
}

// CleanupExpiredCooldowns removes cooldown entries older than 2x the cooldown duration.
func (r *Router) CleanupExpiredCooldowns() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	expiry := r.cfg.CooldownDuration * 2
	removed := 0

	for symbol, lastTime := range r.cooldowns {
		if now.Sub(lastTime) > expiry {
			delete(r.cooldowns, symbol)
			removed++
		}
	}

	return removed
}

// StartCleanupRoutine starts a background goroutine that periodically cleans up expired cooldowns.
func (r *Router) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := r.CleanupExpiredCooldowns()
				if removed > 0 {
					r.logger.Debug("cleaned up expired cooldowns", zap.Int("removed", removed))
				}
			}
		}
	}()
}

// GetStats returns router statistics
func (r *Router) GetStats() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]any{
		"cooldowns_active": len(r.cooldowns),
		"min_confidence":   r.cfg.MinConfidence,
		"cooldown_seconds": r.cfg.CooldownDuration.Seconds(),
		"strong_only":      r.cfg.StrongOnly,
		"directions":       r.cfg.Directions,
	}
}

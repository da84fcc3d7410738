// Package loader runs one batch fetch over a list of symbols.
package loader

import (
	"context"
	"errors"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/predictor"
	"github.com/newthinker/signaldeck/internal/state"
	"go.uber.org/zap"
)

// Result is the outcome of one batch.
type Result = state.Batch

// Observer receives per-fetch and per-batch measurements.
type Observer interface {
	RecordFetch(outcome string, seconds float64)
	RecordBatch(requested, failed int, seconds float64)
}

// Loader fetches signals for a list of symbols one at a time, in order.
// Fetches are never concurrent so the prediction service sees at most one
// request per batch at a time.
type Loader struct {
	fetcher  predictor.Fetcher
	logger   *zap.Logger
	observer Observer
}

// New creates a batch loader
func New(fetcher predictor.Fetcher, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// SetObserver attaches a metrics observer
func (l *Loader) SetObserver(o Observer) {
	l.observer = o
}

// LoadAll fetches every symbol and never fails as a whole. Individual
// failures are logged and returned in Failures. When ctx is cancelled the
// remaining symbols are reported as transport failures.
func (l *Loader) LoadAll(ctx context.Context, symbols []core.Symbol) Result {
	start := time.Now()
	batch := Result{
		Signals:   state.NewSignalSet(),
		Requested: len(symbols),
	}

	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			batch.Failures = append(batch.Failures, core.NewFetchError(sym, core.ErrTransport, err))
			continue
		}

		record, err := l.fetchOne(ctx, sym)
		if err != nil {
			batch.Failures = append(batch.Failures, err)
			continue
		}
		batch.Signals.Put(*record)
	}

	if l.observer != nil {
		l.observer.RecordBatch(len(symbols), len(batch.Failures), time.Since(start).Seconds())
	}

	if batch.AllFailed() {
		l.logger.Warn("batch fetch returned no data",
			zap.Int("symbols", len(symbols)),
			zap.Duration("elapsed", time.Since(start)),
		)
	} else {
		l.logger.Debug("batch fetch complete",
			zap.Int("symbols", len(symbols)),
			zap.Int("ok", batch.Signals.Len()),
			zap.Int("failed", len(batch.Failures)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	return batch
}

func (l *Loader) fetchOne(ctx context.Context, sym core.Symbol) (*core.SignalRecord, *core.FetchError) {
	start := time.Now()
	record, err := l.fetcher.Fetch(ctx, sym)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		var fe *core.FetchError
		if !errors.As(err, &fe) {
			fe = core.NewFetchError(sym, core.ErrTransport, err)
		}
		if l.observer != nil {
			l.observer.RecordFetch(fe.Kind(), elapsed)
		}
		l.logger.Warn("signal fetch failed",
			zap.String("symbol", sym.String()),
			zap.String("kind", fe.Kind()),
			zap.Error(fe.Cause),
		)
		return nil, fe
	}

	if l.observer != nil {
		l.observer.RecordFetch("ok", elapsed)
	}
	return record, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/newthinker/signaldeck/internal/config"
	"github.com/newthinker/signaldeck/internal/dashboard"
	"github.com/newthinker/signaldeck/internal/loader"
	"github.com/newthinker/signaldeck/internal/logger"
	"github.com/newthinker/signaldeck/internal/metrics"
	"github.com/newthinker/signaldeck/internal/notifier"
	"github.com/newthinker/signaldeck/internal/notifier/kafka"
	"github.com/newthinker/signaldeck/internal/notifier/webhook"
	"github.com/newthinker/signaldeck/internal/predictor"
	"github.com/newthinker/signaldeck/internal/router"
	"github.com/newthinker/signaldeck/internal/scheduler"
	"github.com/newthinker/signaldeck/internal/state"
	"github.com/newthinker/signaldeck/internal/storage/kv"
	"github.com/newthinker/signaldeck/internal/views"
	"github.com/newthinker/signaldeck/internal/watchlist"
	"go.uber.org/zap"
)

// loadConfig reads --config when given, otherwise defaults plus environment.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults and environment")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --debug wins over the config level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	opts := logger.Options{Development: debug}
	if cfg != nil && !debug {
		opts.Level = cfg.Log.Level
		opts.Encoding = cfg.Log.Encoding
	}
	return logger.New(opts)
}

// setup loads config and returns it with a logger configured from it.
func setup() (*config.Config, *zap.Logger, error) {
	boot := logger.Must(logger.Options{Development: debug})
	cfg, err := loadConfig(boot)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newPredictor(cfg *config.Config) *predictor.Client {
	return predictor.New(predictor.Config{
		BaseURL: cfg.Predictor.BaseURL,
		Timeout: cfg.Predictor.Timeout,
	})
}

func openStorage(ctx context.Context, cfg *config.Config) (kv.Storage, error) {
	storage, err := kv.Open(ctx, cfg.Storage.KV())
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return storage, nil
}

// openWatchlist opens storage and loads the persisted watchlist.
func openWatchlist(ctx context.Context, cfg *config.Config, log *zap.Logger) (kv.Storage, *watchlist.Store, error) {
	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store := watchlist.NewStore(storage, cfg.Watchlist.DefaultSymbols(), logger.Named(log, "watchlist"))
	if _, err := store.Load(ctx); err != nil {
		log.Warn("could not read persisted watchlist, using defaults", zap.Error(err))
	}
	return storage, store, nil
}

func portfolioOptions(cfg *config.Config) views.PortfolioOptions {
	return views.PortfolioOptions{
		Sort:                views.ParseSortKey(cfg.Views.DefaultSort),
		TopMoversLimit:      cfg.Views.TopMoversLimit,
		SuggestionThreshold: cfg.Views.SuggestionThreshold,
		SuggestionLimit:     cfg.Views.SuggestionLimit,
	}
}

// buildNotifiers registers every enabled notifier.
func buildNotifiers(cfg config.NotifiersConfig) (*notifier.Registry, error) {
	registry := notifier.NewRegistry()

	if cfg.Webhook.Enabled {
		w := webhook.New(cfg.Webhook.URL, cfg.Webhook.Headers)
		if err := w.Init(notifier.Config{Type: "webhook"}); err != nil {
			return nil, err
		}
		if err := registry.Register(w); err != nil {
			return nil, err
		}
	}

	if cfg.Kafka.Enabled {
		k := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err := k.Init(notifier.Config{Type: "kafka"}); err != nil {
			return nil, err
		}
		if err := registry.Register(k); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// app is the wired dashboard with everything it owns.
type app struct {
	cfg         *config.Config
	log         *zap.Logger
	storage     kv.Storage
	store       *watchlist.Store
	prefs       *watchlist.Preferences
	predictor   *predictor.Client
	metrics     *metrics.Registry
	notifiers   *notifier.Registry
	dashboard   *dashboard.Dashboard
	cancelAlert context.CancelFunc
}

// newApp wires storage, prediction client, alerting and the dashboard.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	storage, store, err := openWatchlist(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		storage:   storage,
		store:     store,
		prefs:     watchlist.NewPreferences(storage),
		predictor: newPredictor(cfg),
	}

	var gauges dashboard.Gauges
	var observer scheduler.Observer
	ld := loader.New(a.predictor, logger.Named(log, "loader"))
	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewRegistry()
		ld.SetObserver(a.metrics)
		gauges = a.metrics
		observer = a.metrics
		a.metrics.SetWatchlistSize(len(store.Symbols()))
	}

	var rt *router.Router
	if cfg.Alerts.Enabled {
		rt, err = a.newRouter(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.dashboard = dashboard.New(dashboard.Deps{
		Fetcher:   a.predictor,
		Loader:    ld,
		Watchlist: store,
		Cache:     state.NewCache(),
		Router:    rt,
		Gauges:    gauges,
	}, dashboard.Options{
		Refresh: scheduler.Config{
			Interval: cfg.Refresh.Interval,
			Tick:     cfg.Refresh.CountdownTick,
			Observer: observer,
		},
		Views: portfolioOptions(cfg),
	}, logger.Named(log, "dashboard"))

	return a, nil
}

func (a *app) newRouter(ctx context.Context) (*router.Router, error) {
	registry, err := buildNotifiers(a.cfg.Notifiers)
	if err != nil {
		return nil, fmt.Errorf("creating notifiers: %w", err)
	}
	a.notifiers = registry
	if registry.Len() == 0 {
		a.log.Warn("alerts enabled but no notifier configured")
	}

	rt := router.New(router.Config{
		MinConfidence:    a.cfg.Alerts.MinConfidence,
		CooldownDuration: a.cfg.Alerts.Cooldown,
		StrongOnly:       a.cfg.Alerts.StrongOnly,
		Directions:       a.cfg.Alerts.AlertDirections(),
	}, registry, logger.Named(a.log, "router"))
	rt.SetHistory(a.storage)
	if a.metrics != nil {
		rt.SetObserver(a.metrics)
	}
	if err := rt.LoadCooldowns(ctx); err != nil {
		a.log.Warn("could not restore alert cooldowns", zap.Error(err))
	}

	cleanupCtx, cancel := context.WithCancel(context.Background())
	a.cancelAlert = cancel
	rt.StartCleanupRoutine(cleanupCtx, max(a.cfg.Alerts.Cooldown, time.Minute))
	return rt, nil
}

// Close stops the dashboard, notifiers and storage.
func (a *app) Close() error {
	if a.dashboard != nil {
		a.dashboard.Close()
	}
	if a.cancelAlert != nil {
		a.cancelAlert()
	}

	var errs []error
	if a.notifiers != nil {
		errs = append(errs, a.notifiers.Close())
	}
	errs = append(errs, closeStorage(a.storage))
	return errors.Join(errs...)
}

// closeStorage releases backends that hold connections.
func closeStorage(storage kv.Storage) error {
	if c, ok := storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
